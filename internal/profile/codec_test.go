package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocumentFromData_Tolerant(t *testing.T) {
	doc := DocumentFromData("u1", map[string]interface{}{
		FieldEmail:             " Client@Chantier.fr ",
		FieldDisplayName:       42,
		FieldRole:              "client",
		FieldChantierIDs:       []interface{}{"s1", 7, "s2"},
		FieldDateCreation:      "2023-01-02T03:04:05Z",
		FieldDerniereConnexion: int64(1672628645000),
	})

	assert.Equal(t, "u1", doc.UID)
	assert.Equal(t, "Client@Chantier.fr", doc.Email)
	assert.Empty(t, doc.DisplayName)
	assert.Equal(t, RoleClient, doc.Role)
	assert.Equal(t, []string{"s1", "s2"}, doc.ChantierIDs)
	assert.Equal(t, TimestampISOString, doc.DateCreation.Kind)
	assert.Equal(t, TimestampEpochNumber, doc.DerniereConnexion.Kind)

	empty := DocumentFromData("u2", nil)
	assert.Equal(t, "u2", empty.UID)
	assert.Equal(t, Role(""), empty.Role)
	assert.Nil(t, empty.ChantierIDs)
}

func TestDocument_Data(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	doc := Document{UID: "u1", Email: "a@b.fr", Role: RoleProfessional, DateCreation: ISOTimestamp("garbage")}

	data := doc.Data(now)
	assert.Equal(t, "professional", data[FieldRole])
	assert.Equal(t, now, data[FieldDateCreation])
	assert.Equal(t, now, data[FieldDerniereConnexion])
	assert.NotContains(t, data, FieldChantierID)
	assert.NotContains(t, data, FieldChantierIDs)

	doc.ChantierID = "s1"
	doc.ChantierIDs = []string{"s1"}
	data = doc.Data(now)
	assert.Equal(t, "s1", data[FieldChantierID])
	assert.Equal(t, []string{"s1"}, data[FieldChantierIDs])
}

func TestDocumentFromData_NormalizesRoleSpelling(t *testing.T) {
	assert.Equal(t, RoleProfessional, DocumentFromData("p1", map[string]interface{}{FieldRole: " Professional "}).Role)
	assert.Equal(t, RoleClient, DocumentFromData("c1", map[string]interface{}{FieldRole: "CLIENT"}).Role)
	assert.Equal(t, Role("admin"), DocumentFromData("a1", map[string]interface{}{FieldRole: "Admin"}).Role)
}
