package organizer

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"
)

// FilterAll is the option that disables a filter.
const FilterAll = "All"

// Filter selects records by category, publisher, unity version and title.
// An empty field or FilterAll matches everything.
type Filter struct {
	Category     string
	Publisher    string
	UnityVersion string
	Search       string
}

func isAll(v string) bool { return v == "" || v == FilterAll }

// Match reports whether r passes every active filter.
func (f Filter) Match(r *PackageRecord) bool {
	if !isAll(f.Category) && !strings.Contains(r.Category.Label, f.Category) {
		return false
	}
	if !isAll(f.Publisher) && r.Publisher.Label != f.Publisher {
		return false
	}
	if !isAll(f.UnityVersion) && !strings.Contains(r.UnityVersion, f.UnityVersion) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// Apply returns the records that pass f, in order.
func (f Filter) Apply(records []*PackageRecord) []*PackageRecord {
	out := make([]*PackageRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterChoices are the selectable values for each filter, each list
// sorted with FilterAll first.
type FilterChoices struct {
	Categories    []string `json:"categories" yaml:"categories"`
	Publishers    []string `json:"publishers" yaml:"publishers"`
	UnityVersions []string `json:"unity_versions" yaml:"unity_versions"`
}

// FilterOptions collects the distinct filter values present in records.
func FilterOptions(records []*PackageRecord) FilterChoices {
	var cats, pubs, unity []string
	for _, r := range records {
		cats = append(cats, r.BaseCategory)
		pubs = append(pubs, r.Publisher.Label)
		unity = append(unity, UnityMajorMinor(r.UnityVersion))
	}
	return FilterChoices{
		Categories:    distinctWithAll(cats),
		Publishers:    distinctWithAll(pubs),
		UnityVersions: distinctWithAll(unity),
	}
}

func distinctWithAll(values []string) []string {
	slices.Sort(values)
	values = slices.Compact(values)
	return append([]string{FilterAll}, values...)
}

// UnityMajorMinor reduces a Unity version such as "2019.4.1f1" to "2019.4".
func UnityMajorMinor(v string) string {
	if v == "" || v == NotAvailable {
		return NotAvailable
	}
	if parsed, err := version.NewVersion(v); err == nil {
		seg := parsed.Segments()
		if len(seg) >= 2 {
			return strconv.Itoa(seg[0]) + "." + strconv.Itoa(seg[1])
		}
	}
	parts := strings.SplitN(v, ".", 3)
	if len(parts) >= 2 {
		return parts[0] + "." + parts[1]
	}
	return v
}

// Column identifies a sortable record field.
type Column int

const (
	ColumnTitle Column = iota
	ColumnUnityVersion
	ColumnVersion
	ColumnModified
	ColumnPublished
	ColumnSize
	ColumnPublisher
	ColumnCategory
	ColumnArchived
)

var columnNames = map[string]Column{
	"title":     ColumnTitle,
	"unity":     ColumnUnityVersion,
	"version":   ColumnVersion,
	"modified":  ColumnModified,
	"published": ColumnPublished,
	"size":      ColumnSize,
	"publisher": ColumnPublisher,
	"category":  ColumnCategory,
	"archived":  ColumnArchived,
}

// SortKey is one column of a multi-column sort.
type SortKey struct {
	Column     Column
	Descending bool
}

// ParseSortKeys parses "title,size:desc" into sort keys.
func ParseSortKeys(s string) ([]SortKey, error) {
	var keys []SortKey
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, dir, _ := strings.Cut(part, ":")
		col, ok := columnNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown sort column %q", name)
		}
		key := SortKey{Column: col}
		switch strings.ToLower(dir) {
		case "", "asc":
		case "desc":
			key.Descending = true
		default:
			return nil, fmt.Errorf("unknown sort direction %q for column %q", dir, name)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// SortBy stably sorts records by keys, earlier keys taking precedence.
func SortBy(records []*PackageRecord, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(records, func(a, b *PackageRecord) int {
		for _, k := range keys {
			c := compareColumn(a, b, k.Column)
			if k.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

func compareColumn(a, b *PackageRecord, col Column) int {
	switch col {
	case ColumnTitle:
		return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case ColumnUnityVersion:
		return compareVersions(a.UnityVersion, b.UnityVersion)
	case ColumnVersion:
		return compareVersions(a.Version, b.Version)
	case ColumnModified:
		return a.ModifiedDate.Compare(b.ModifiedDate)
	case ColumnPublished:
		return a.PublishDate.Compare(b.PublishDate)
	case ColumnSize:
		return cmp.Compare(a.FileSize, b.FileSize)
	case ColumnPublisher:
		return cmp.Compare(a.Publisher.Label, b.Publisher.Label)
	case ColumnCategory:
		return cmp.Compare(a.Category.Label, b.Category.Label)
	case ColumnArchived:
		return cmp.Compare(boolInt(a.IsArchived), boolInt(b.IsArchived))
	default:
		panic(fmt.Sprintf("unhandled sort column %d", col))
	}
}

func compareVersions(a, b string) int {
	va, errA := version.NewVersion(a)
	vb, errB := version.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return cmp.Compare(a, b)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
