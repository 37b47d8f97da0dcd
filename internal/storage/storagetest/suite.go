// Package storagetest holds the behaviour every storage backend shares.
package storagetest

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/storage"
)

// Suite runs the storage contract. Backends embed it and set Store in
// SetupTest.
type Suite struct {
	suite.Suite
	Store storage.Storage
	Ctx   context.Context
}

func (s *Suite) TestSaveAndGetPolicy() {
	s.Require().NoError(s.Store.SavePolicy(s.Ctx, 0, []byte(`{"sizes":[1,1]}`)))

	data, err := s.Store.GetPolicy(s.Ctx, 0)
	s.Require().NoError(err)
	s.Equal(`{"sizes":[1,1]}`, string(data))
}

func (s *Suite) TestGetPolicyNotFound() {
	_, err := s.Store.GetPolicy(s.Ctx, 7)
	s.ErrorIs(err, model.ErrSaveNotFound)
}

func (s *Suite) TestSaveOverwritesSlot() {
	s.Require().NoError(s.Store.SavePolicy(s.Ctx, 1, []byte("first")))
	s.Require().NoError(s.Store.SavePolicy(s.Ctx, 1, []byte("second")))

	data, err := s.Store.GetPolicy(s.Ctx, 1)
	s.Require().NoError(err)
	s.Equal("second", string(data))

	count, err := s.Store.CountPolicies(s.Ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *Suite) TestCountAndListPolicies() {
	count, err := s.Store.CountPolicies(s.Ctx)
	s.Require().NoError(err)
	s.Zero(count)

	for _, slot := range []int{2, 0, 10} {
		s.Require().NoError(s.Store.SavePolicy(s.Ctx, slot, []byte("x")))
	}

	count, err = s.Store.CountPolicies(s.Ctx)
	s.Require().NoError(err)
	s.Equal(3, count)

	slots, err := s.Store.ListPolicies(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]int{0, 2, 10}, slots)
}

func (s *Suite) TestSaveRejectsNegativeSlot() {
	s.Error(s.Store.SavePolicy(s.Ctx, -1, []byte("x")))
}

func (s *Suite) TestSavedDataIsCopied() {
	data := []byte("abc")
	s.Require().NoError(s.Store.SavePolicy(s.Ctx, 0, data))
	data[0] = 'z'

	got, err := s.Store.GetPolicy(s.Ctx, 0)
	s.Require().NoError(err)
	s.Equal("abc", string(got))
}
