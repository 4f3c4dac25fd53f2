package access

import "chantier_backend/internal/common"

func errNotFound() error { return common.ErrNotFound.WithDetails("Profile u1 not found.") }

func errConflict() error { return common.ErrConflict.WithDetails("Profile u1 already exists.") }
