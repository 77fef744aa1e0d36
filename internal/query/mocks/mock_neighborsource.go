// Package mocks contains a hand-written gomock double for
// query.NeighborSource, in the style of mockgen output used throughout
// _examples/kkarrenn-devops-gemini-cli-extension/devops-mcp-server's
// */mocks packages (e.g. cloudrun/mocks/mock_exec.go).
package mocks

import (
	"context"
	"reflect"

	"github.com/golang/mock/gomock"

	"github.com/kkarrenn/searchcore/internal/query"
)

// MockNeighborSource is a mock of query.NeighborSource.
type MockNeighborSource struct {
	ctrl     *gomock.Controller
	recorder *MockNeighborSourceMockRecorder
}

// MockNeighborSourceMockRecorder is the mock recorder for MockNeighborSource.
type MockNeighborSourceMockRecorder struct {
	mock *MockNeighborSource
}

// NewMockNeighborSource creates a new mock instance.
func NewMockNeighborSource(ctrl *gomock.Controller) *MockNeighborSource {
	mock := &MockNeighborSource{ctrl: ctrl}
	mock.recorder = &MockNeighborSourceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockNeighborSource) EXPECT() *MockNeighborSourceMockRecorder {
	return m.recorder
}

// Neighbors mocks base method.
func (m *MockNeighborSource) Neighbors(ctx context.Context, word string, k int, threshold float32) ([]query.Neighbor, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Neighbors", ctx, word, k, threshold)
	ret0, _ := ret[0].([]query.Neighbor)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Neighbors indicates an expected call of Neighbors.
func (mr *MockNeighborSourceMockRecorder) Neighbors(ctx, word, k, threshold interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Neighbors", reflect.TypeOf((*MockNeighborSource)(nil).Neighbors), ctx, word, k, threshold)
}
