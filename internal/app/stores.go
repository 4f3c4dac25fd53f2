// File: internal/app/stores.go
package app

import (
	"fmt"

	"chantier_backend/internal/config"
	"chantier_backend/internal/firebase"
	"chantier_backend/internal/platform/database"
	"chantier_backend/internal/profile"
	"chantier_backend/internal/site"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stores groups the document collections the resolver reads and writes.
type Stores struct {
	Profiles profile.Repository
	Sites    site.Directory
}

// NewStores opens the profile and site collections on the configured driver.
// Firestore reuses the client owned by the Firebase service; relational drivers
// open their own connection, which the returned cleanup closes.
func NewStores(cfg *config.Config, fb *firebase.FirebaseService, logger *zap.Logger) (*Stores, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverFirestore:
		client := fb.Firestore()
		if client == nil {
			return nil, nil, fmt.Errorf("firestore client is not initialized")
		}
		logger.Info("Using Firestore document store",
			zap.String("profiles", cfg.ProfilesCollection),
			zap.String("sites", cfg.SitesCollection),
		)
		return &Stores{
			Profiles: profile.NewFirestoreRepository(client, cfg.ProfilesCollection),
			Sites:    site.NewFirestoreDirectory(client, cfg.SitesCollection),
		}, func() {}, nil

	case config.StoreDriverPostgres, config.StoreDriverSQLite:
		db, err := database.NewGORM(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		stores, err := newGORMStores(db, cfg)
		if err != nil {
			database.CloseGORMDB(db, logger)
			return nil, nil, err
		}
		return stores, func() { database.CloseGORMDB(db, logger) }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func newGORMStores(db *gorm.DB, cfg *config.Config) (*Stores, error) {
	profiles, err := profile.NewGORMRepository(db, cfg.ProfilesCollection)
	if err != nil {
		return nil, fmt.Errorf("migrate %s: %w", cfg.ProfilesCollection, err)
	}
	sites, err := site.NewGORMDirectory(db, cfg.SitesCollection)
	if err != nil {
		return nil, fmt.Errorf("migrate %s: %w", cfg.SitesCollection, err)
	}
	return &Stores{Profiles: profiles, Sites: sites}, nil
}
