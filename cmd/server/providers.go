package main

import (
	"chantier_backend/internal/auth"
	"chantier_backend/internal/config"
	"chantier_backend/internal/firebase"
	"chantier_backend/internal/shared"

	"go.uber.org/zap"
)

// provideFirebase opens the Firebase service and closes its Firestore client on cleanup.
func provideFirebase(cfg *config.Config, logger *zap.Logger) (*firebase.FirebaseService, func(), error) {
	fb, err := firebase.NewFirebaseService(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := fb.Close(); err != nil {
			logger.Error("Failed to close Firebase clients", zap.Error(err))
		}
	}
	return fb, cleanup, nil
}

// provideIdentityStore puts the local revocation list in front of Firebase.
func provideIdentityStore(fb *firebase.FirebaseService, logger *zap.Logger) shared.IdentityStore {
	return auth.NewRevokingIdentityStore(fb, logger)
}
