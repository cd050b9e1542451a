/*
Copyright 2024 Reversa Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/reversa-app/reversa/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Return record methods

func (m *MockDataSource) CreateReturn(ctx context.Context, rec *model.ReturnRecord) (*model.ReturnRecord, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReturnRecord), args.Error(1)
}

func (m *MockDataSource) GetReturnByOrderID(ctx context.Context, orderID string) (*model.ReturnRecord, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReturnRecord), args.Error(1)
}

func (m *MockDataSource) ReturnExistsByOrderID(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) GetAllReturns(ctx context.Context, limit, offset int) ([]model.ReturnRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReturnRecord), args.Error(1)
}

func (m *MockDataSource) UpdateReturnValues(ctx context.Context, returnID string, product, freight decimal.Decimal) error {
	args := m.Called(ctx, returnID, product, freight)
	return args.Error(0)
}

func (m *MockDataSource) UpdateReturnStatus(ctx context.Context, returnID, status string) error {
	args := m.Called(ctx, returnID, status)
	return args.Error(0)
}

func (m *MockDataSource) UpdateLogisticsStatus(ctx context.Context, returnID, status string) error {
	args := m.Called(ctx, returnID, status)
	return args.Error(0)
}

// Ledger methods

func (m *MockDataSource) RecordLedgerEvent(ctx context.Context, event *model.LedgerEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) LedgerEventKeyExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) GetLedgerEventsByReturnID(ctx context.Context, returnID string) ([]*model.LedgerEvent, error) {
	args := m.Called(ctx, returnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LedgerEvent), args.Error(1)
}

// Import batch methods

func (m *MockDataSource) RegisterImportBatch(ctx context.Context, batch *model.ImportBatch) (bool, error) {
	args := m.Called(ctx, batch)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) ImportBatchKeyExists(ctx context.Context, batchKey string) (bool, error) {
	args := m.Called(ctx, batchKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) FinishImportBatch(ctx context.Context, batchID string, total, created, updated, errs int) error {
	args := m.Called(ctx, batchID, total, created, updated, errs)
	return args.Error(0)
}

func (m *MockDataSource) RecordRawLine(ctx context.Context, line *model.RawImportLine) (bool, error) {
	args := m.Called(ctx, line)
	return args.Bool(0), args.Error(1)
}
