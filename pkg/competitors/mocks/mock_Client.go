// Package mocks provides test doubles for the competitors client.
package mocks

import (
	"context"

	competitors "github.com/sells-group/venue-cli/pkg/competitors"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Count provides a mock function with given fields: ctx, req
func (_m *MockClient) Count(ctx context.Context, req competitors.CountRequest) (*competitors.CountResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Count")
	}

	var r0 *competitors.CountResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, competitors.CountRequest) (*competitors.CountResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, competitors.CountRequest) *competitors.CountResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*competitors.CountResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, competitors.CountRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Analyze provides a mock function with given fields: ctx, req
func (_m *MockClient) Analyze(ctx context.Context, req competitors.AnalysisRequest) (*competitors.AnalysisResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Analyze")
	}

	var r0 *competitors.AnalysisResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, competitors.AnalysisRequest) (*competitors.AnalysisResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, competitors.AnalysisRequest) *competitors.AnalysisResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*competitors.AnalysisResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, competitors.AnalysisRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Health provides a mock function with given fields: ctx
func (_m *MockClient) Health(ctx context.Context) (*competitors.HealthResponse, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Health")
	}

	var r0 *competitors.HealthResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) (*competitors.HealthResponse, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) *competitors.HealthResponse); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*competitors.HealthResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
