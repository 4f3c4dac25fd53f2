package site

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// siteRecord is the relational row of a site. Only access-control columns are mapped.
type siteRecord struct {
	ID           string `gorm:"column:id;type:varchar(128);primaryKey"`
	Nom          string `gorm:"column:nom;type:varchar(255)"`
	ClientEmail  string `gorm:"column:client_email;type:varchar(255)"`
	ClientEmail2 string `gorm:"column:client_email2;type:varchar(255)"`
	ClientEmail3 string `gorm:"column:client_email3;type:varchar(255)"`
}

type gormDirectory struct {
	db    *gorm.DB
	table string
}

// NewGORMDirectory creates a site directory over a SQL table, migrating it first.
func NewGORMDirectory(db *gorm.DB, table string) (Directory, error) {
	if err := db.Table(table).AutoMigrate(&siteRecord{}); err != nil {
		return nil, fmt.Errorf("migrating site table %s: %w", table, err)
	}
	return &gormDirectory{db: db, table: table}, nil
}

func (d *gormDirectory) List(ctx context.Context) ([]Site, error) {
	var recs []siteRecord
	if err := d.db.WithContext(ctx).Table(d.table).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing sites in %s: %w", d.table, err)
	}
	sites := make([]Site, 0, len(recs))
	for _, r := range recs {
		sites = append(sites, Site{
			ID:           r.ID,
			Nom:          r.Nom,
			ClientEmail:  r.ClientEmail,
			ClientEmail2: r.ClientEmail2,
			ClientEmail3: r.ClientEmail3,
		})
	}
	return sites, nil
}
