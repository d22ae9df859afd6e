package organizer_test

import (
	"slices"
	"testing"
	"time"

	"asset-organizer/internal/organizer"
	"asset-organizer/internal/testutil"
)

func filterRecords() []*organizer.PackageRecord {
	a := testutil.NewRecord(1, "Alpha Shader", "1.2", 1, "2019.4.1f1", "/s/a.unitypackage")
	a.Category = organizer.LabelWithID{Label: "Shaders/Fullscreen"}
	a.BaseCategory = "Shaders"
	a.Publisher.Label = "Acme"
	a.FileSize = 300

	b := testutil.NewRecord(2, "beta tool", "1.10", 2, "2018.3.0f2", "/s/b.unitypackage")
	b.Category = organizer.LabelWithID{Label: "Tools/Utilities"}
	b.BaseCategory = "Tools"
	b.Publisher.Label = "Bolt"
	b.FileSize = 100

	c := testutil.NewRecord(3, "Gamma Tool", "1.9", 3, "NA", "/s/c.unitypackage")
	c.Category = organizer.LabelWithID{Label: "Tools/Animation"}
	c.BaseCategory = "Tools"
	c.Publisher.Label = "Acme"
	c.FileSize = 100

	return []*organizer.PackageRecord{a, b, c}
}

func titles(records []*organizer.PackageRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter organizer.Filter
		want   []string
	}{
		{"no filter", organizer.Filter{}, []string{"Alpha Shader", "beta tool", "Gamma Tool"}},
		{"All disables filters", organizer.Filter{Category: "All", Publisher: "All", UnityVersion: "All"}, []string{"Alpha Shader", "beta tool", "Gamma Tool"}},
		{"category substring", organizer.Filter{Category: "Tools"}, []string{"beta tool", "Gamma Tool"}},
		{"publisher equality", organizer.Filter{Publisher: "Acme"}, []string{"Alpha Shader", "Gamma Tool"}},
		{"publisher is not substring", organizer.Filter{Publisher: "Acm"}, []string{}},
		{"unity version substring", organizer.Filter{UnityVersion: "2019.4"}, []string{"Alpha Shader"}},
		{"case insensitive search", organizer.Filter{Search: "TOOL"}, []string{"beta tool", "Gamma Tool"}},
		{"combined", organizer.Filter{Category: "Tools", Publisher: "Acme"}, []string{"Gamma Tool"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(tt.filter.Apply(filterRecords()))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterOptions(t *testing.T) {
	opts := organizer.FilterOptions(filterRecords())

	if want := []string{"All", "Shaders", "Tools"}; !slices.Equal(opts.Categories, want) {
		t.Errorf("Categories = %v, want %v", opts.Categories, want)
	}
	if want := []string{"All", "Acme", "Bolt"}; !slices.Equal(opts.Publishers, want) {
		t.Errorf("Publishers = %v, want %v", opts.Publishers, want)
	}
	if want := []string{"All", "2018.3", "2019.4", "NA"}; !slices.Equal(opts.UnityVersions, want) {
		t.Errorf("UnityVersions = %v, want %v", opts.UnityVersions, want)
	}
}

func TestUnityMajorMinor(t *testing.T) {
	tests := map[string]string{
		"2019.4.1f1": "2019.4",
		"5.6.0p3":    "5.6",
		"4.6.6f2":    "4.6",
		"2020.1":     "2020.1",
		"NA":         "NA",
		"":           "NA",
		"weird":      "weird",
	}
	for in, want := range tests {
		if got := organizer.UnityMajorMinor(in); got != want {
			t.Errorf("UnityMajorMinor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseSortKeys(t *testing.T) {
	keys, err := organizer.ParseSortKeys("size:desc, title")
	if err != nil {
		t.Fatalf("ParseSortKeys() error = %v", err)
	}
	want := []organizer.SortKey{
		{Column: organizer.ColumnSize, Descending: true},
		{Column: organizer.ColumnTitle},
	}
	if !slices.Equal(keys, want) {
		t.Errorf("ParseSortKeys() = %v, want %v", keys, want)
	}

	if _, err := organizer.ParseSortKeys("colour"); err == nil {
		t.Error("ParseSortKeys() expected error for unknown column")
	}
	if _, err := organizer.ParseSortKeys("title:sideways"); err == nil {
		t.Error("ParseSortKeys() expected error for unknown direction")
	}
}

func TestSortBy(t *testing.T) {
	t.Run("multi column with direction", func(t *testing.T) {
		records := filterRecords()
		organizer.SortBy(records, []organizer.SortKey{
			{Column: organizer.ColumnSize},
			{Column: organizer.ColumnTitle, Descending: true},
		})
		want := []string{"Gamma Tool", "beta tool", "Alpha Shader"}
		if got := titles(records); !slices.Equal(got, want) {
			t.Errorf("SortBy() = %v, want %v", got, want)
		}
	})

	t.Run("versions compare numerically", func(t *testing.T) {
		records := filterRecords()
		organizer.SortBy(records, []organizer.SortKey{{Column: organizer.ColumnVersion}})
		want := []string{"Alpha Shader", "Gamma Tool", "beta tool"}
		if got := titles(records); !slices.Equal(got, want) {
			t.Errorf("SortBy(version) = %v, want %v", got, want)
		}
	})

	t.Run("stable for equal keys", func(t *testing.T) {
		records := filterRecords()
		records[0].ModifiedDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		organizer.SortBy(records, []organizer.SortKey{{Column: organizer.ColumnPublisher}})
		want := []string{"Alpha Shader", "Gamma Tool", "beta tool"}
		if got := titles(records); !slices.Equal(got, want) {
			t.Errorf("SortBy(publisher) = %v, want %v", got, want)
		}
	})
}
