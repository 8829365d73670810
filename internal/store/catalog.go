package store

import (
	"bufio"
	"bytes"
	"sort"
	"strings"
	"sync"

	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"
)

// CategoryCatalog is the category vocabulary: a curated default list plus
// the categories the user added, one per line in a text file.
type CategoryCatalog struct {
	path     string
	defaults []string
	mu       sync.Mutex
}

// NewCategoryCatalog creates a catalog backed by path.
func NewCategoryCatalog(path string, defaults []string) *CategoryCatalog {
	return &CategoryCatalog{path: path, defaults: defaults}
}

// List returns defaults and user categories, sorted and de-duplicated.
func (c *CategoryCatalog) List() ([]string, error) {
	custom, err := readLines("categories", c.path)
	if err != nil {
		return nil, err
	}
	return uniqueSorted(append(append([]string{}, c.defaults...), custom...)), nil
}

// Contains reports whether name is part of the vocabulary.
func (c *CategoryCatalog) Contains(name string) (bool, error) {
	all, err := c.List()
	if err != nil {
		return false, err
	}
	i := sort.SearchStrings(all, name)
	return i < len(all) && all[i] == name, nil
}

// Add appends name to the user categories. It reports false when the
// category was already known.
func (c *CategoryCatalog) Add(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, parsererror.ErrEmptyCategory
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	known, err := c.Contains(name)
	if err != nil || known {
		return false, err
	}
	custom, err := readLines("categories", c.path)
	if err != nil {
		return false, err
	}
	return true, writeLines("categories", c.path, append(custom, name))
}

// GroupCatalog is the managed list of account groups. It always holds at
// least one group.
type GroupCatalog struct {
	path string
	mu   sync.Mutex
}

// NewGroupCatalog creates a catalog backed by path.
func NewGroupCatalog(path string) *GroupCatalog {
	return &GroupCatalog{path: path}
}

// List returns the groups in file order, or the default group when none
// were saved.
func (g *GroupCatalog) List() ([]string, error) {
	groups, err := readLines("groups", g.path)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return []string{models.DefaultGroup}, nil
	}
	return groups, nil
}

// First returns the group given to accounts created implicitly.
func (g *GroupCatalog) First() (string, error) {
	groups, err := g.List()
	if err != nil {
		return "", err
	}
	return groups[0], nil
}

// Add appends a group if it is not present yet.
func (g *GroupCatalog) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return parsererror.ErrEmptyGroup
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	groups, err := g.List()
	if err != nil {
		return err
	}
	for _, existing := range groups {
		if existing == name {
			return nil
		}
	}
	return writeLines("groups", g.path, append(groups, name))
}

// Remove deletes a group. The last remaining group cannot be removed.
func (g *GroupCatalog) Remove(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	groups, err := g.List()
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(groups))
	for _, existing := range groups {
		if existing != name {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(groups) {
		return parsererror.ErrGroupNotFound
	}
	if len(kept) == 0 {
		return parsererror.ErrLastGroup
	}
	return writeLines("groups", g.path, kept)
}

func readLines(storeName, path string) ([]string, error) {
	data, err := fileutils.ReadFileIfExists(path)
	if err != nil {
		return nil, &parsererror.StoreError{Store: storeName, Path: path, Op: "read", Err: err}
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &parsererror.StoreError{Store: storeName, Path: path, Op: "read", Err: err}
	}
	return lines, nil
}

func writeLines(storeName, path string, lines []string) error {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := fileutils.WriteFileAtomic(path, buf.Bytes(), fileutils.PermissionDataFile); err != nil {
		return &parsererror.StoreError{Store: storeName, Path: path, Op: "write", Err: err}
	}
	return nil
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
