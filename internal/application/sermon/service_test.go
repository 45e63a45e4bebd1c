package sermon_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/church-service/internal/application/sermon"
	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/infrastructure/db/memory"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestListPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	sunday := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := sermon.NewService(memory.New().Sermons, fixedClock{sunday})

	for i := 0; i < 12; i++ {
		series := "Psalms"
		if i%2 == 0 {
			series = "Acts"
		}
		_, err := svc.Create(ctx, sermon.CreateCmd{
			Title:   " Week ",
			Speaker: "Pastor John",
			Date:    sunday.AddDate(0, 0, -7*i),
			Series:  series,
		})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, domain.SermonFilter{}, domain.PageRequest{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, first.Total)
	assert.Equal(t, 3, first.Pages())
	require.Len(t, first.Items, 5)
	assert.True(t, first.Items[0].Date.Equal(sunday))
	assert.Equal(t, "Week", first.Items[0].Title)

	last, err := svc.List(ctx, domain.SermonFilter{}, domain.PageRequest{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, last.Items, 2)

	acts, err := svc.List(ctx, domain.SermonFilter{Series: " acts "}, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 6, acts.Total)

	none, err := svc.List(ctx, domain.SermonFilter{Speaker: "Elder Sarah"}, domain.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, none.Total)
	assert.Empty(t, none.Items)
}

func TestGet_NotFound(t *testing.T) {
	svc := sermon.NewService(memory.New().Sermons, fixedClock{time.Now()})
	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}
