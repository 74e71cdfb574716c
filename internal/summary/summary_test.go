package summary

import (
	"testing"

	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_Duplicates(t *testing.T) {
	contacts := []model.Contact{
		{Name: "A", Phone: "+905551112222"},
		{Name: "B", Phone: "+905551112222"},
		{Name: "C", Phone: "+905559998888"},
	}

	s := Summarize(contacts)

	require.Len(t, s.DuplicatePhoneNumbers, 1)
	g := s.DuplicatePhoneNumbers["+905551112222"]
	assert.Equal(t, "A", g.FirstName)
	assert.Equal(t, []string{"B"}, g.Duplicates)

	assert.Equal(t, []model.Contact{
		{Name: "A", Phone: "+905551112222"},
		{Name: "B", Phone: model.MissingPhone},
		{Name: "C", Phone: "+905559998888"},
	}, s.UniqueContacts)

	assert.Equal(t, 3, s.TotalRows)
	assert.Equal(t, 3, s.TotalValidContacts)
	assert.Equal(t, 2, s.UniquePhoneNumbers)
	assert.Equal(t, []string{"B"}, s.MissingPhoneNumbers)
	assert.Equal(t, []string{"A", "B"}, s.NonUniqueContacts)
	assert.Empty(t, s.DifferentAreaCodes)
	assert.Zero(t, s.TotalRooms)
}

func TestSummarize_GroupKeepsOrderAndRepeats(t *testing.T) {
	s := Summarize([]model.Contact{
		{Name: "Zeynep Kaya", Phone: "+905551112222"},
		{Name: "Ali Veli", Phone: "+905551112222"},
		{Name: "Ali Veli", Phone: "+905551112222"},
		{Name: "Berk Can", Phone: "+905551112222"},
	})

	g := s.DuplicatePhoneNumbers["+905551112222"]
	assert.Equal(t, "Zeynep Kaya", g.FirstName)
	assert.Equal(t, []string{"Ali Veli", "Ali Veli", "Berk Can"}, g.Duplicates)
	assert.Equal(t, []string{"Ali Veli", "Berk Can", "Zeynep Kaya"}, s.NonUniqueContacts)
	assert.Equal(t, []string{"Ali Veli", "Ali Veli", "Berk Can"}, s.MissingPhoneNumbers)
}

func TestSummarize_MissingAndAreaCodes(t *testing.T) {
	s := Summarize([]model.Contact{
		{Name: "Ayse Yilmaz", Phone: model.MissingPhone},
		{Name: "Office Line", Phone: "+902121234567"},
		{Name: "Broken Number", Phone: "+90123"},
		{Name: "Can Ozturk", Phone: "+905441234567"},
	})

	assert.Equal(t, 4, s.TotalRows)
	assert.Equal(t, 2, s.TotalValidContacts)
	assert.Equal(t, 2, s.UniquePhoneNumbers)
	assert.Equal(t, []string{"Ayse Yilmaz"}, s.MissingPhoneNumbers)
	assert.Equal(t, []model.Contact{{Name: "Office Line", Phone: "+902121234567"}}, s.DifferentAreaCodes)
	assert.Empty(t, s.DuplicatePhoneNumbers)
	assert.Len(t, s.UniqueContacts, 4)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TotalRows)
	assert.NotNil(t, s.MissingPhoneNumbers)
	assert.NotNil(t, s.DuplicatePhoneNumbers)
	assert.NotNil(t, s.UniqueContacts)
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	in := []model.Contact{
		{Name: "A B", Phone: "+905551112222"},
		{Name: "C D", Phone: "+905551112222"},
	}
	_ = Summarize(in)
	assert.Equal(t, "+905551112222", in[1].Phone)
}

func TestExportContacts(t *testing.T) {
	s := Summarize([]model.Contact{
		{Name: "Ozgur Aksoy", Phone: "+905321234567"},
		{Name: "Ayse Yilmaz", Phone: "+905321234567"},
		{Name: "Can Ozturk", Phone: "+905441234567"},
		{Name: "Elif Demir", Phone: model.MissingPhone},
		{Name: "Single", Phone: "+905559998888"},
	})

	assert.Equal(t, []model.Contact{
		{Name: "Ozgur Aksoy", Phone: "+905321234567"},
		{Name: "Can Ozturk", Phone: "+905441234567"},
	}, ExportContacts(s))
}
