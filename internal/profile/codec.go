package profile

import (
	"strings"
	"time"
)

// DocumentFromData decodes a raw document map. Missing or mistyped fields
// decode to their zero value; nothing here fails.
func DocumentFromData(uid string, data map[string]interface{}) Document {
	doc := Document{UID: uid}
	if v := stringField(data, FieldUID); v != "" && uid == "" {
		doc.UID = v
	}
	doc.Email = strings.TrimSpace(stringField(data, FieldEmail))
	doc.DisplayName = stringField(data, FieldDisplayName)
	doc.Role, _ = ParseRole(stringField(data, FieldRole))
	doc.ChantierID = strings.TrimSpace(stringField(data, FieldChantierID))
	doc.ChantierIDs = stringSliceField(data, FieldChantierIDs)
	doc.DateCreation = TimestampFromValue(data[FieldDateCreation])
	doc.DerniereConnexion = TimestampFromValue(data[FieldDerniereConnexion])
	return doc
}

// Data encodes a document for a full create. Timestamps are written natively,
// resolving any legacy shape against now.
func (d *Document) Data(now time.Time) map[string]interface{} {
	data := map[string]interface{}{
		FieldUID:               d.UID,
		FieldEmail:             d.Email,
		FieldDisplayName:       d.DisplayName,
		FieldRole:              string(d.Role),
		FieldDateCreation:      d.DateCreation.Resolve(now),
		FieldDerniereConnexion: d.DerniereConnexion.Resolve(now),
	}
	if d.ChantierID != "" {
		data[FieldChantierID] = d.ChantierID
	}
	if len(d.ChantierIDs) > 0 {
		data[FieldChantierIDs] = append([]string(nil), d.ChantierIDs...)
	}
	return data
}

func stringField(data map[string]interface{}, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func stringSliceField(data map[string]interface{}, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
