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
package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/reversa-app/reversa/model"
)

// CreateReturn is the request body for explicit return-record creation.
type CreateReturn struct {
	OrderID      string          `json:"order_id"`
	Store        string          `json:"store"`
	SKU          string          `json:"sku"`
	CustomerName string          `json:"customer_name"`
	ProductValue decimal.Decimal `json:"product_value"`
	FreightValue decimal.Decimal `json:"freight_value"`
	Status       string          `json:"status"`
	Reason       string          `json:"reason"`
}

func (c *CreateReturn) ValidateCreateReturn() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OrderID, validation.Required),
		validation.Field(&c.Status, validation.By(validStatusOrEmpty)),
	)
}

// ToReturnRecord converts the request into the domain record.
func (c *CreateReturn) ToReturnRecord() model.ReturnRecord {
	status := c.Status
	if status == "" {
		status = model.StatusPendente
	}
	product := c.ProductValue
	if product.IsNegative() {
		product = decimal.Zero
	}
	freight := c.FreightValue
	if freight.IsNegative() {
		freight = decimal.Zero
	}
	return model.ReturnRecord{
		OrderID:      c.OrderID,
		Store:        c.Store,
		SKU:          c.SKU,
		CustomerName: c.CustomerName,
		ProductValue: product,
		FreightValue: freight,
		Status:       status,
		ReasonLabel:  c.Reason,
	}
}

// UpdateReturnStatus is the request body for the operational status change.
type UpdateReturnStatus struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}

func (u *UpdateReturnStatus) ValidateUpdateReturnStatus() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Status, validation.Required, validation.By(validStatus)),
	)
}

// AdvanceLogistics is the request body for a logistics sub-status advance.
type AdvanceLogistics struct {
	Next  string `json:"next"`
	Actor string `json:"actor"`
}

func (a *AdvanceLogistics) ValidateAdvanceLogistics() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Next, validation.Required),
	)
}

func validStatus(value interface{}) error {
	s, _ := value.(string)
	if !model.ValidStatus(s) {
		return validation.NewError("validation_status", "unknown return status")
	}
	return nil
}

func validStatusOrEmpty(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	return validStatus(value)
}
