package mocks

import (
	"context"

	"github.com/miguelfer1410/cdp-sub001/easypay"
	"github.com/stretchr/testify/mock"
)

type MockEasypayClient struct {
	mock.Mock
}

func (m *MockEasypayClient) IssueMbReference(ctx context.Context, request easypay.ReferenceRequest) (easypay.ReferenceResult, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(easypay.ReferenceResult), args.Error(1)
}

func (m *MockEasypayClient) GetPaymentStatus(ctx context.Context, externalId string) (easypay.StatusResult, error) {
	args := m.Called(ctx, externalId)
	return args.Get(0).(easypay.StatusResult), args.Error(1)
}
