package services

import (
	"testing"

	"gorm.io/gorm"

	"github.com/opencampus/registrar-backend/internal/hierarchy"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/repos/testutil"
)

// testStack wires the service graph over a throwaway database, mirroring
// the wiring in cmd/server.
type testStack struct {
	db        *gorm.DB
	attrRepo  repos.AttributeRepo
	entRepo   repos.EntityRepo
	valRepo   repos.ValueRepo
	relRepo   repos.RelationRepo
	registry  RegistryService
	entities  EntityService
	values    ValueService
	relations RelationService
	directory DirectoryService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	s := &testStack{
		db:       db,
		attrRepo: repos.NewAttributeRepo(db, log),
		entRepo:  repos.NewEntityRepo(db, log),
		valRepo:  repos.NewValueRepo(db, log),
		relRepo:  repos.NewRelationRepo(db, log),
	}
	s.registry = NewRegistryService(db, log, s.attrRepo)
	s.entities = NewEntityService(db, log, s.entRepo, hierarchy.Default())
	s.values = NewValueService(db, log, s.entRepo, s.valRepo, s.registry)
	s.relations = NewRelationService(db, log, s.entRepo, s.relRepo)
	s.directory = NewDirectoryService(db, log, s.entities, s.values)
	return s
}
