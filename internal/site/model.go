package site

import (
	"strings"

	"github.com/gosimple/slug"
)

// Site document field names.
const (
	FieldNom          = "nom"
	FieldClientEmail  = "clientEmail"
	FieldClientEmail2 = "clientEmail2"
	FieldClientEmail3 = "clientEmail3"
)

// Site is a construction project (chantier) as seen by access control. Other
// fields of the stored document are ignored.
type Site struct {
	ID           string
	Nom          string
	ClientEmail  string
	ClientEmail2 string
	ClientEmail3 string
}

// ClientEmails returns the client email fields in priority order, blanks included.
func (s Site) ClientEmails() []string {
	return []string{s.ClientEmail, s.ClientEmail2, s.ClientEmail3}
}

// Summary is the public listing shape of a site.
type Summary struct {
	ID   string `json:"id"`
	Nom  string `json:"nom"`
	Slug string `json:"slug"`
}

// Summary renders s for listings. Unnamed sites are slugged by id.
func (s Site) Summary() Summary {
	name := strings.TrimSpace(s.Nom)
	base := name
	if base == "" {
		base = s.ID
	}
	return Summary{ID: s.ID, Nom: name, Slug: slug.Make(base)}
}

func siteFromData(id string, data map[string]interface{}) Site {
	str := func(key string) string {
		if v, ok := data[key].(string); ok {
			return v
		}
		return ""
	}
	return Site{
		ID:           id,
		Nom:          str(FieldNom),
		ClientEmail:  str(FieldClientEmail),
		ClientEmail2: str(FieldClientEmail2),
		ClientEmail3: str(FieldClientEmail3),
	}
}
