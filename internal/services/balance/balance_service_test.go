package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePagination(t *testing.T) {
	filter := HistoryFilter{}
	filter.NormalizePagination()
	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 20, filter.PageSize)

	filter = HistoryFilter{Page: -3, PageSize: -1}
	filter.NormalizePagination()
	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 20, filter.PageSize)

	filter = HistoryFilter{Page: 5, PageSize: 250}
	filter.NormalizePagination()
	assert.Equal(t, 5, filter.Page)
	assert.Equal(t, 100, filter.PageSize)

	filter = HistoryFilter{Page: 2, PageSize: 50}
	filter.NormalizePagination()
	assert.Equal(t, 2, filter.Page)
	assert.Equal(t, 50, filter.PageSize)
}
