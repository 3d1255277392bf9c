package shared

import "testing"

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		page, pageSize int
		wantPage       int
		wantSize       int
	}{
		{page: 0, pageSize: 0, wantPage: 1, wantSize: 20},
		{page: -3, pageSize: -1, wantPage: 1, wantSize: 20},
		{page: 2, pageSize: 50, wantPage: 2, wantSize: 50},
		{page: 1, pageSize: 500, wantPage: 1, wantSize: 100},
	}
	for _, item := range cases {
		page, pageSize := NormalizePagination(item.page, item.pageSize)
		if page != item.wantPage || pageSize != item.wantSize {
			t.Fatalf("normalize(%d,%d) want (%d,%d) got (%d,%d)",
				item.page, item.pageSize, item.wantPage, item.wantSize, page, pageSize)
		}
	}
}
