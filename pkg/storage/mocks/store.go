// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/williamokano/gfs_rotator/pkg/rotation"
)

// MockStore is a mock implementation of the rotation.Store interface
type MockStore struct {
	mock.Mock
}

// Name provides a mock function with given fields:
func (m *MockStore) Name() string {
	return m.Called().String(0)
}

// List provides a mock function with given fields: ctx, database
func (m *MockStore) List(ctx context.Context, database string) ([]rotation.Backup, error) {
	ret := m.Called(ctx, database)

	var r0 []rotation.Backup
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]rotation.Backup)
	}

	return r0, ret.Error(1)
}

// Remove provides a mock function with given fields: ctx, id
func (m *MockStore) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// NewMockStore creates a new instance of MockStore
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
