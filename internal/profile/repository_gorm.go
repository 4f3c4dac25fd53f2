package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chantier_backend/internal/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// profileRecord is the relational row of a profile.
type profileRecord struct {
	UID               string     `gorm:"column:uid;type:varchar(128);primaryKey"`
	Email             string     `gorm:"column:email;type:varchar(255);index"`
	DisplayName       string     `gorm:"column:display_name;type:varchar(255)"`
	Role              string     `gorm:"column:role;type:varchar(32)"`
	ChantierID        string     `gorm:"column:chantier_id;type:varchar(128)"`
	ChantierIDs       []string   `gorm:"column:chantier_ids;type:text;serializer:json"`
	DateCreation      *time.Time `gorm:"column:date_creation"`
	DerniereConnexion *time.Time `gorm:"column:derniere_connexion"`
}

type gormRepository struct {
	db    *gorm.DB
	table string
	now   func() time.Time
}

// NewGORMRepository creates a profile repository over a SQL table, migrating it first.
func NewGORMRepository(db *gorm.DB, table string) (Repository, error) {
	if err := db.Table(table).AutoMigrate(&profileRecord{}); err != nil {
		return nil, fmt.Errorf("migrating profile table %s: %w", table, err)
	}
	return &gormRepository{db: db, table: table, now: time.Now}, nil
}

func (r *gormRepository) FindByUID(ctx context.Context, uid string) (*Document, error) {
	var rec profileRecord
	err := r.db.WithContext(ctx).Table(r.table).Where("uid = ?", uid).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails(fmt.Sprintf("Profile %s not found.", uid))
		}
		return nil, fmt.Errorf("reading profile %s: %w", uid, err)
	}
	doc := rec.document()
	return &doc, nil
}

func (r *gormRepository) Create(ctx context.Context, doc *Document) error {
	if doc == nil || doc.UID == "" {
		return common.ErrBadRequest.WithDetails("Profile uid is required.")
	}
	rec := recordFromDocument(doc, r.now())
	if err := r.db.WithContext(ctx).Table(r.table).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails(fmt.Sprintf("Profile %s already exists.", doc.UID))
		}
		return fmt.Errorf("creating profile %s: %w", doc.UID, err)
	}
	return nil
}

// Merge is a single upsert: a new row gets the patched fields, an existing
// row has only the patched columns overwritten.
func (r *gormRepository) Merge(ctx context.Context, uid string, patch Patch) error {
	if patch.IsEmpty() {
		return nil
	}
	doc := Document{UID: uid}
	patch.Apply(&doc)
	rec := recordFromDocument(&doc, r.now())

	err := r.db.WithContext(ctx).Table(r.table).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns(patchColumns(patch)),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("merging profile %s: %w", uid, err)
	}
	return nil
}

// patchColumns lists the columns a patch writes.
func patchColumns(patch Patch) []string {
	var cols []string
	if patch.Email != nil {
		cols = append(cols, "email")
	}
	if patch.DisplayName != nil {
		cols = append(cols, "display_name")
	}
	if patch.Role != nil {
		cols = append(cols, "role")
	}
	if patch.ChantierID != nil {
		cols = append(cols, "chantier_id")
	}
	if patch.ChantierIDs != nil {
		cols = append(cols, "chantier_ids")
	}
	if patch.DateCreation != nil {
		cols = append(cols, "date_creation")
	}
	if patch.DerniereConnexion != nil {
		cols = append(cols, "derniere_connexion")
	}
	return cols
}

func (r *gormRepository) List(ctx context.Context) ([]Document, error) {
	var recs []profileRecord
	if err := r.db.WithContext(ctx).Table(r.table).Order("uid").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	docs := make([]Document, 0, len(recs))
	for i := range recs {
		docs = append(docs, recs[i].document())
	}
	return docs, nil
}

func (rec *profileRecord) document() Document {
	doc := Document{
		UID:         rec.UID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		ChantierID:  rec.ChantierID,
		ChantierIDs: append([]string(nil), rec.ChantierIDs...),
	}
	doc.Role, _ = ParseRole(rec.Role)
	if rec.DateCreation != nil {
		doc.DateCreation = NativeTimestamp(*rec.DateCreation)
	}
	if rec.DerniereConnexion != nil {
		doc.DerniereConnexion = NativeTimestamp(*rec.DerniereConnexion)
	}
	return doc
}

func recordFromDocument(doc *Document, now time.Time) profileRecord {
	rec := profileRecord{
		UID:         doc.UID,
		Email:       doc.Email,
		DisplayName: doc.DisplayName,
		Role:        string(doc.Role),
		ChantierID:  doc.ChantierID,
		ChantierIDs: append([]string(nil), doc.ChantierIDs...),
	}
	if doc.DateCreation.Kind != TimestampMissing {
		t := doc.DateCreation.Resolve(now)
		rec.DateCreation = &t
	}
	if doc.DerniereConnexion.Kind != TimestampMissing {
		t := doc.DerniereConnexion.Resolve(now)
		rec.DerniereConnexion = &t
	}
	return rec
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
