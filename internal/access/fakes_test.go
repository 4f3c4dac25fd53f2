package access

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"chantier_backend/internal/audit"
	"chantier_backend/internal/common"
	"chantier_backend/internal/profile"
	"chantier_backend/internal/shared"
	"chantier_backend/internal/site"

	"github.com/stretchr/testify/mock"
)

// memoryProfiles is an in-memory profile.Repository with merge-write semantics.
type memoryProfiles struct {
	mu      sync.Mutex
	docs    map[string]profile.Document
	creates int
	merges  []profile.Patch
}

func newMemoryProfiles(docs ...profile.Document) *memoryProfiles {
	m := &memoryProfiles{docs: make(map[string]profile.Document)}
	for _, d := range docs {
		m.docs[d.UID] = d
	}
	return m
}

func (m *memoryProfiles) FindByUID(_ context.Context, uid string) (*profile.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[uid]
	if !ok {
		return nil, common.ErrNotFound.WithDetails(fmt.Sprintf("Profile %s not found.", uid))
	}
	doc.ChantierIDs = append([]string(nil), doc.ChantierIDs...)
	return &doc, nil
}

func (m *memoryProfiles) Create(_ context.Context, doc *profile.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.UID]; ok {
		return common.ErrConflict
	}
	m.creates++
	m.docs[doc.UID] = *doc
	return nil
}

func (m *memoryProfiles) Merge(_ context.Context, uid string, patch profile.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[uid]
	if !ok {
		doc = profile.Document{UID: uid}
	}
	patch.Apply(&doc)
	m.docs[uid] = doc
	m.merges = append(m.merges, patch)
	return nil
}

func (m *memoryProfiles) List(_ context.Context) ([]profile.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := make([]profile.Document, 0, len(m.docs))
	for _, d := range m.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UID < docs[j].UID })
	return docs, nil
}

func (m *memoryProfiles) get(uid string) profile.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[uid]
}

func (m *memoryProfiles) mergeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.merges)
}

type memorySites []site.Site

func (s memorySites) List(context.Context) ([]site.Site, error) {
	return append([]site.Site(nil), s...), nil
}

// fakeIdentities is an in-memory identity store.
type fakeIdentities struct {
	mu         sync.Mutex
	principals map[string]shared.Principal
	claims     map[string]string
}

func newFakeIdentities(principals ...shared.Principal) *fakeIdentities {
	f := &fakeIdentities{principals: make(map[string]shared.Principal), claims: make(map[string]string)}
	for _, p := range principals {
		f.principals[p.UID] = p
	}
	return f
}

func (f *fakeIdentities) VerifyToken(_ context.Context, token string) (*shared.Principal, error) {
	return f.LookupPrincipal(context.Background(), token)
}

func (f *fakeIdentities) LookupPrincipal(_ context.Context, uid string) (*shared.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.principals[uid]
	if !ok {
		return nil, shared.NewIdentityError(shared.CodeUserNotFound, errors.New("no user record"))
	}
	if role, ok := f.claims[uid]; ok {
		p.ClaimedRole = role
	}
	return &p, nil
}

func (f *fakeIdentities) CreatePrincipal(_ context.Context, email, _, displayName string) (*shared.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := shared.Principal{UID: fmt.Sprintf("uid-%d", len(f.principals)+1), Email: email, DisplayName: displayName}
	f.principals[p.UID] = p
	return &p, nil
}

func (f *fakeIdentities) RevokeSessions(context.Context, string) error { return nil }

func (f *fakeIdentities) SetRoleClaim(_ context.Context, uid, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims[uid] = role
	return nil
}

// recordingAudit collects events in memory.
type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Record(_ context.Context, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingAudit) types() []audit.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// MockProfileRepository is a testify mock of profile.Repository used for failure injection.
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByUID(ctx context.Context, uid string) (*profile.Document, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Document), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, doc *profile.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockProfileRepository) Merge(ctx context.Context, uid string, patch profile.Patch) error {
	return m.Called(ctx, uid, patch).Error(0)
}

func (m *MockProfileRepository) List(ctx context.Context) ([]profile.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profile.Document), args.Error(1)
}

// MockDirectory is a testify mock of site.Directory.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) List(ctx context.Context) ([]site.Site, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]site.Site), args.Error(1)
}
