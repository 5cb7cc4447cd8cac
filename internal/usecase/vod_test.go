package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jo3qma.com/pac12_vod/internal/domain/model"
)

type fakeVodRepo struct {
	listing *model.VodListing
	err     error

	queries []model.VodQuery
	pages   []string
}

func (f *fakeVodRepo) FetchVods(ctx context.Context, q model.VodQuery) (*model.VodListing, error) {
	f.queries = append(f.queries, q)
	return f.listing, f.err
}

func (f *fakeVodRepo) FetchVodsPage(ctx context.Context, nextPageURL string) (*model.VodListing, error) {
	f.pages = append(f.pages, nextPageURL)
	return f.listing, f.err
}

type fakeSports map[int]string

func (f fakeSports) Load(ctx context.Context) {}

func (f fakeSports) Name(id int) *string {
	n, ok := f[id]
	if !ok {
		return nil
	}
	return &n
}

type fakeSchools struct {
	schools map[int]model.School
	loaded  *[][]int
}

func (f fakeSchools) Load(ctx context.Context, ids []int) {
	if f.loaded != nil {
		*f.loaded = append(*f.loaded, ids)
	}
}

func (f fakeSchools) Get(id int) *model.School {
	s, ok := f.schools[id]
	if !ok {
		return nil
	}
	return &s
}

func strp(s string) *string { return &s }

func alphaBeta() fakeSchools {
	return fakeSchools{schools: map[int]model.School{
		5: {ID: 5, Name: "Alpha"},
		7: {ID: 7, Name: "Beta"},
	}}
}

func TestVodUsecase_LoadVods_enrichesSchoolsAndSports(t *testing.T) {
	t.Parallel()

	repo := &fakeVodRepo{listing: &model.VodListing{
		Programs: []*model.VodProgram{
			{ID: "both", SchoolRefs: []model.Ref{{ID: 5}, {ID: 7}}, SportRefs: []model.Ref{{ID: 1}}},
			{ID: "one", SchoolRefs: []model.Ref{{ID: 5}}, SportRefs: []model.Ref{{ID: 1}, {ID: 2}}},
		},
	}}
	var loaded [][]int
	schools := alphaBeta()
	schools.loaded = &loaded
	uc := NewVodUsecase(repo, fakeSports{1: "Football", 2: "Soccer"}, schools)

	page := uc.LoadVods(context.Background(), model.ListConfig{PageSize: 10}, model.FreshCursor())
	if len(page.Programs) != 2 {
		t.Fatalf("Programs len got %d, want 2", len(page.Programs))
	}
	if diff := cmp.Diff([][]int{{5, 7}}, loaded); diff != "" {
		t.Fatalf("school ids requested (-want +got):\n%s", diff)
	}

	both := page.Programs[0]
	if got := both.SchoolsList.String(); got != "Alpha, Beta" {
		t.Errorf("both.SchoolsList got %q, want %q", got, "Alpha, Beta")
	}
	if !both.SchoolsList.Joined {
		t.Errorf("both.SchoolsList should be joined")
	}
	if both.SportsList != "Football" {
		t.Errorf("both.SportsList got %q, want %q", both.SportsList, "Football")
	}

	one := page.Programs[1]
	if got := one.SchoolsList.String(); got != "Alpha" {
		t.Errorf("one.SchoolsList got %q, want %q", got, "Alpha")
	}
	if one.SchoolsList.Joined {
		t.Errorf("one.SchoolsList with a single school should stay an array")
	}
	if one.SportsList != "Football, Soccer" {
		t.Errorf("one.SportsList got %q, want %q", one.SportsList, "Football, Soccer")
	}

	want := []*model.School{{ID: 5, Name: "Alpha"}}
	if diff := cmp.Diff(want, one.Schools); diff != "" {
		t.Errorf("one.Schools (-want +got):\n%s", diff)
	}
}

func TestVodUsecase_LoadVods_schoolsListJSONShape(t *testing.T) {
	t.Parallel()

	repo := &fakeVodRepo{listing: &model.VodListing{
		Programs: []*model.VodProgram{
			{ID: "both", SchoolRefs: []model.Ref{{ID: 5}, {ID: 7}}},
			{ID: "one", SchoolRefs: []model.Ref{{ID: 7}}},
			{ID: "none"},
		},
	}}
	uc := NewVodUsecase(repo, fakeSports{}, alphaBeta())

	page := uc.LoadVods(context.Background(), model.ListConfig{PageSize: 10}, model.FreshCursor())

	cases := []struct {
		idx  int
		want string
	}{
		{idx: 0, want: `"Alpha, Beta"`},
		{idx: 1, want: `["Beta"]`},
		{idx: 2, want: `""`},
	}
	for _, tc := range cases {
		b, err := json.Marshal(page.Programs[tc.idx].SchoolsList)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(b) != tc.want {
			t.Errorf("Programs[%d].SchoolsList JSON got %s, want %s", tc.idx, b, tc.want)
		}
	}
}

func TestVodUsecase_LoadVods_sportsFailureLeavesEmptySportsList(t *testing.T) {
	t.Parallel()

	repo := &fakeVodRepo{listing: &model.VodListing{
		Programs: []*model.VodProgram{
			{ID: "a", SchoolRefs: []model.Ref{{ID: 5}}, SportRefs: []model.Ref{{ID: 1}}},
			{ID: "b", SchoolRefs: []model.Ref{{ID: 7}}, SportRefs: []model.Ref{{ID: 1}, {ID: 2}}},
		},
	}}
	// 競技カタログが空 = 取得失敗
	uc := NewVodUsecase(repo, fakeSports{}, alphaBeta())

	page := uc.LoadVods(context.Background(), model.ListConfig{PageSize: 10}, model.FreshCursor())
	for i, p := range page.Programs {
		if p.SportsList != "" {
			t.Errorf("Programs[%d].SportsList got %q, want empty", i, p.SportsList)
		}
		if len(p.SportNames) != len(p.SportRefs) {
			t.Errorf("Programs[%d].SportNames len got %d, want %d", i, len(p.SportNames), len(p.SportRefs))
		}
	}
}

func TestVodUsecase_LoadVods_lookupMissKeepsNilSlot(t *testing.T) {
	t.Parallel()

	repo := &fakeVodRepo{listing: &model.VodListing{
		Programs: []*model.VodProgram{
			{ID: "a", SchoolRefs: []model.Ref{{ID: 5}, {ID: 404}}},
		},
	}}
	uc := NewVodUsecase(repo, fakeSports{}, alphaBeta())

	page := uc.LoadVods(context.Background(), model.ListConfig{PageSize: 10}, model.FreshCursor())
	p := page.Programs[0]
	if len(p.Schools) != 2 {
		t.Fatalf("Schools len got %d, want 2", len(p.Schools))
	}
	if p.Schools[1] != nil {
		t.Fatalf("Schools[1] got %+v, want nil", p.Schools[1])
	}
	if diff := cmp.Diff([]*string{strp("Alpha"), nil}, p.SchoolsList.Names); diff != "" {
		t.Fatalf("SchoolsList.Names (-want +got):\n%s", diff)
	}
	if got := p.SchoolsList.String(); got != "Alpha" {
		t.Fatalf("SchoolsList got %q, want %q", got, "Alpha")
	}
}

func TestVodUsecase_LoadVods_freshQueryUsesConfig(t *testing.T) {
	t.Parallel()

	repo := &fakeVodRepo{listing: &model.VodListing{}}
	uc := NewVodUsecase(repo, fakeSports{}, alphaBeta())

	uc.LoadVods(context.Background(), model.ListConfig{PageSize: 4, SportFilter: "12"}, model.FreshCursor())

	want := []model.VodQuery{{Page: "", PageSize: 4, Sort: "DESC", Sports: "12"}}
	if diff := cmp.Diff(want, repo.queries); diff != "" {
		t.Fatalf("queries (-want +got):\n%s", diff)
	}
	if len(repo.pages) != 0 {
		t.Fatalf("unexpected next-page fetch: %v", repo.pages)
	}
}

func TestVodUsecase_LoadVods_nextCursorIsUsedVerbatim(t *testing.T) {
	t.Parallel()

	next := "https://api.pac-12.com/v3/vod?page=2&pagesize=10"
	repo := &fakeVodRepo{listing: &model.VodListing{
		Programs: []*model.VodProgram{{ID: "a"}},
		NextPage: next,
	}}
	uc := NewVodUsecase(repo, fakeSports{}, alphaBeta())

	first := uc.LoadVods(context.Background(), model.ListConfig{PageSize: 10, SportFilter: "3"}, model.FreshCursor())
	if first.Next == nil || first.Next.NextPageURL != next {
		t.Fatalf("Next got %+v, want %q", first.Next, next)
	}

	uc.LoadVods(context.Background(), model.ListConfig{PageSize: 10, SportFilter: "3"}, *first.Next)
	if diff := cmp.Diff([]string{next}, repo.pages); diff != "" {
		t.Fatalf("next-page fetches (-want +got):\n%s", diff)
	}
	if len(repo.queries) != 1 {
		t.Fatalf("fresh queries got %d, want 1", len(repo.queries))
	}
}

func TestVodUsecase_LoadVods_emptyProgramsHasNoCursor(t *testing.T) {
	t.Parallel()

	repo := &fakeVodRepo{listing: &model.VodListing{NextPage: "https://example.com/next"}}
	uc := NewVodUsecase(repo, fakeSports{}, alphaBeta())

	page := uc.LoadVods(context.Background(), model.ListConfig{PageSize: 10}, model.FreshCursor())
	if len(page.Programs) != 0 || page.Next != nil {
		t.Fatalf("page got %+v, want empty with no cursor", page)
	}
}

func TestVodUsecase_LoadVods_fetchErrorYieldsEmptyResult(t *testing.T) {
	t.Parallel()

	repo := &fakeVodRepo{err: errors.New("network down")}
	uc := NewVodUsecase(repo, fakeSports{}, alphaBeta())

	page := uc.LoadVods(context.Background(), model.ListConfig{PageSize: 10}, model.FreshCursor())
	if page == nil {
		t.Fatalf("page is nil")
	}
	if len(page.Programs) != 0 || page.Next != nil {
		t.Fatalf("page got %+v, want empty", page)
	}
}

func TestVodUsecase_LoadVods_withoutSchoolsSkipsEnrichment(t *testing.T) {
	t.Parallel()

	repo := &fakeVodRepo{listing: &model.VodListing{
		Programs: []*model.VodProgram{{ID: "a", SportRefs: []model.Ref{{ID: 1}}}},
		NextPage: "https://example.com/next",
	}}
	var loaded [][]int
	schools := alphaBeta()
	schools.loaded = &loaded
	uc := NewVodUsecase(repo, fakeSports{1: "Football"}, schools)

	page := uc.LoadVods(context.Background(), model.ListConfig{PageSize: 10}, model.FreshCursor())
	if len(loaded) != 0 {
		t.Fatalf("schools should not be requested, got %v", loaded)
	}
	if page.Programs[0].Enriched {
		t.Fatalf("program should not be enriched")
	}
	if page.Next == nil {
		t.Fatalf("next cursor should still be surfaced")
	}
}
