package cleaner

import (
	"testing"

	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleCleaner_Clean(t *testing.T) {
	rows := []model.RawRow{
		{Name: "Mr. OZGUR AKSOY", Phone: "05321234567"},
		{Name: "Miami Hilton Garden Inn", Phone: "3055550100"},
		{Name: "Ms. Ayse Yilmaz", Phone: "5339876543.0"},
		{Name: "Tour Leaders Sedef O'BRIEN (SFO)", Phone: "05551112233"},
		{Name: "Cher", Phone: "05551112233"},
		{Name: "Mehmet Kaya", Phone: "nan"},
	}

	got := NewRuleCleaner(nil).Clean(rows)

	require.Len(t, got.Contacts, 2)
	assert.Equal(t, model.Contact{Name: "OZGUR AKSOY", Phone: "+905321234567"}, got.Contacts[0])
	assert.Equal(t, model.Contact{Name: "Ayse Yilmaz", Phone: "+905339876543"}, got.Contacts[1])
	assert.Equal(t, 4, got.Rejected)

	for _, c := range got.Contacts {
		assert.True(t, IsValidContact(c.Name, c.Phone))
	}
}

func TestRuleCleaner_Empty(t *testing.T) {
	got := NewRuleCleaner(nil).Clean(nil)
	assert.NotNil(t, got.Contacts)
	assert.Empty(t, got.Contacts)
	assert.Zero(t, got.Rejected)
}
