package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/httpapi"
	"github.com/marshallshelly/agroexport/pkg/store"
)

func sampleDashboard() httpapi.Dashboard {
	created := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	return httpapi.Dashboard{
		Products: 12,
		Posts:    4,
		Quotes:   store.Stats{"total": 3, "pending": 2, "reviewed": 1, "responded": 0, "closed": 0},
		Messages: store.Stats{"total": 1, "unread": 1, "read": 0, "responded": 0},
		RecentQuotes: []catalog.QuoteRequest{{
			CustomerName:  "Amara Okafor",
			CustomerEmail: "amara@example.com",
			Quantity:      40,
			PackageSize:   "25kg",
			Status:        catalog.QuotePending,
			CreatedAt:     created,
		}},
		RecentMessages: []catalog.ContactMessage{{
			Name:      "Lena Vogt",
			Email:     "lena@example.com",
			Subject:   "Shipping to Hamburg",
			Status:    catalog.MessageUnread,
			CreatedAt: created,
		}},
	}
}

func TestDashboardModel_Load(t *testing.T) {
	calls := 0
	m := NewDashboardModel(context.Background(), func(context.Context) (httpapi.Dashboard, error) {
		calls++
		return sampleDashboard(), nil
	})
	assert.Contains(t, m.View(), "Loading")

	next, _ := m.Update(m.fetch()())
	dm := next.(DashboardModel)
	require.NoError(t, dm.Err())
	assert.Equal(t, int64(12), dm.Data().Products)
	assert.Len(t, dm.quotes.Rows(), 1)
	assert.Len(t, dm.messages.Rows(), 1)
	assert.Equal(t, "Amara Okafor", dm.quotes.Rows()[0][0])
	assert.Equal(t, "2025-03-04 10:30", dm.messages.Rows()[0][4])

	view := dm.View()
	assert.NotContains(t, view, "Loading")
	assert.Contains(t, view, "Shipping to Hamburg")

	next, cmd := dm.Update(key("r"))
	assert.NotNil(t, cmd)
	assert.True(t, next.(DashboardModel).loading)
	assert.Equal(t, 1, calls)
}

func TestDashboardModel_LoadError(t *testing.T) {
	m := NewDashboardModel(context.Background(), func(context.Context) (httpapi.Dashboard, error) {
		return httpapi.Dashboard{}, errors.New("store unavailable")
	})
	next, _ := m.Update(m.fetch()())
	dm := next.(DashboardModel)
	assert.ErrorContains(t, dm.Err(), "store unavailable")
	assert.Contains(t, dm.View(), "store unavailable")
}

func TestDashboardModel_TabSwitchesFocus(t *testing.T) {
	var m tea.Model = NewDashboardModel(context.Background(), nil)
	assert.True(t, m.(DashboardModel).quotes.Focused())

	m, _ = m.Update(key("tab"))
	dm := m.(DashboardModel)
	assert.Equal(t, tabMessages, dm.tab)
	assert.False(t, dm.quotes.Focused())
	assert.True(t, dm.messages.Focused())

	m, _ = m.Update(key("tab"))
	assert.Equal(t, tabQuotes, m.(DashboardModel).tab)
}

func TestDashboardModel_RefreshIgnoredWhileLoading(t *testing.T) {
	m := NewDashboardModel(context.Background(), nil)
	_, cmd := m.Update(key("r"))
	assert.Nil(t, cmd)
}

func TestFormatStats_TotalFirst(t *testing.T) {
	out := formatStats(store.Stats{"total": 3, "pending": 2, "closed": 1})
	assert.Regexp(t, `3.*total.*closed.*pending`, out)
}
