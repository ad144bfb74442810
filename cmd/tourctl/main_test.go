package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/neexbeast/tourfront/internal/tour"
)

type fakeSource struct {
	byScope map[string][]tour.Tour
	err     error
	calls   []string
}

func (f *fakeSource) FetchAll(_ context.Context, scope tour.Scope) ([]tour.Tour, error) {
	f.calls = append(f.calls, scope.Key())
	if f.err != nil {
		return nil, f.err
	}
	return f.byScope[scope.Key()], nil
}

func (f *fakeSource) Detail(_ context.Context, id string) (*tour.TourDetail, error) {
	for _, tours := range f.byScope {
		for _, t := range tours {
			if t.ID.String() == id {
				return &tour.TourDetail{Tour: t, Description: "A day out", Highlights: []string{"boat", "lunch"}}, nil
			}
		}
	}
	return nil, tour.ErrNotFound
}

func newFake() *fakeSource {
	return &fakeSource{byScope: map[string][]tour.Tour{
		"all": {
			{ID: "1", Title: "Hanoi Food Walk (English)", Duration: "4 hours", SalePrice: "100"},
			{ID: "2", Title: "Ha Long Cruise (French)", Duration: "2 days", SalePrice: "250"},
			{ID: "3", Title: "Sapa Trek (English)", Duration: "3 days", SalePrice: "150",
				Location: &tour.Location{ID: "9", Name: "Sapa"}},
		},
		"location:9": {
			{ID: "3", Title: "Sapa Trek (English)", Duration: "3 days", SalePrice: "150"},
		},
	}}
}

func execute(t *testing.T, src *fakeSource, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(src)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestList_JSONWithFilterAndSort(t *testing.T) {
	out, err := execute(t, newFake(), "", "list", "--language", "English", "--sort", "price-high-low", "-o", "json")
	require.NoError(t, err)

	var rows []tourRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "3", rows[0].ID)
	assert.Equal(t, "Sapa", rows[0].Location)
	assert.Equal(t, "1", rows[1].ID)
}

func TestList_YAML(t *testing.T) {
	out, err := execute(t, newFake(), "", "list", "--price", "250", "--output", "yaml")
	require.NoError(t, err)

	var rows []tourRow
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0].ID)
	assert.Equal(t, "250", rows[0].SalePrice)
}

func TestList_Table(t *testing.T) {
	out, err := execute(t, newFake(), "", "list", "--location", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Sapa Trek (English)")
	assert.Contains(t, out, "1 tours")
}

func TestList_EmptyResultIsEmptyArray(t *testing.T) {
	out, err := execute(t, newFake(), "", "list", "--price", "1", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestList_FetchError(t *testing.T) {
	src := newFake()
	src.err = errors.New("status 500")
	_, err := execute(t, src, "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), fetchFailed)
}

func TestList_BadSort(t *testing.T) {
	src := newFake()
	_, err := execute(t, src, "", "list", "--sort", "rating")
	require.ErrorIs(t, err, tour.ErrUnknownSortOrder)
	assert.Empty(t, src.calls, "no fetch for an invalid sort")
}

func TestRoot_BadOutputFormat(t *testing.T) {
	_, err := execute(t, newFake(), "", "list", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestDetail(t *testing.T) {
	out, err := execute(t, newFake(), "", "detail", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Ha Long Cruise (French)")
	assert.Contains(t, out, "boat; lunch")
	assert.Contains(t, out, "A day out")
}

func TestDetail_NotFound(t *testing.T) {
	_, err := execute(t, newFake(), "", "detail", "42")
	require.ErrorIs(t, err, tour.ErrNotFound)
}

func TestBrowse_Session(t *testing.T) {
	src := newFake()
	script := strings.Join([]string{
		"location all",
		"language English",
		"sort price-low-high",
		"show",
		"clear",
		"sort nope",
		"bogus",
		"quit",
		"location 9",
	}, "\n")

	out, err := execute(t, src, script, "browse", "-o", "json")
	require.NoError(t, err)

	assert.Equal(t, []string{"all"}, src.calls, "filters and sort must not refetch; quit stops reading")
	assert.Contains(t, out, "scope all, sort price-low-high, 2 of 3 tours")
	assert.Contains(t, out, "scope all, sort price-low-high, 3 of 3 tours")
	assert.Contains(t, out, "unknown sort order")
	assert.Contains(t, out, `error: unknown command "bogus"`)
}

func TestBrowse_ScopeChangeRefetches(t *testing.T) {
	src := newFake()
	out, err := execute(t, src, "location all\nlocation 9\n", "browse")
	require.NoError(t, err)
	assert.Equal(t, []string{"all", "location:9"}, src.calls)
	assert.Contains(t, out, "scope 9, sort recommended, 1 of 1 tours")
}

func TestBrowse_FetchErrorShowsMessage(t *testing.T) {
	src := newFake()
	src.err = errors.New("boom")
	out, err := execute(t, src, "location all\nshow\n", "browse")
	require.NoError(t, err)
	assert.Contains(t, out, "error: "+fetchFailed)
	assert.Contains(t, out, fetchFailed+"\n")
}
