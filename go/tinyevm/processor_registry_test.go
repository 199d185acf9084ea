// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package tinyevm

import (
	"testing"

	"go.uber.org/mock/gomock"
)

func TestProcessorRegistry_RegisterAndLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	processor := NewMockProcessor(ctrl)

	name := "Test-Registry-Lookup"
	RegisterProcessorFactory(name, func() (Processor, error) {
		return processor, nil
	})

	if GetProcessorFactory("test-registry-lookup") == nil {
		t.Fatalf("lookup should be case-insensitive")
	}
	got, err := NewProcessor(name)
	if err != nil {
		t.Fatalf("failed to create processor: %v", err)
	}
	if got != processor {
		t.Errorf("unexpected processor instance")
	}
	if _, found := GetAllRegisteredProcessorFactories()["test-registry-lookup"]; !found {
		t.Errorf("registered factory is not listed")
	}
}

func TestProcessorRegistry_UnknownNameIsReported(t *testing.T) {
	if _, err := NewProcessor("this-processor-does-not-exist"); err == nil {
		t.Errorf("expected lookup of unknown processor to fail")
	}
}

func TestProcessorRegistry_DuplicateRegistrationPanics(t *testing.T) {
	factory := func() (Processor, error) { return nil, nil }
	RegisterProcessorFactory("test-registry-duplicate", factory)
	defer func() {
		if recover() == nil {
			t.Errorf("expected duplicate registration to panic")
		}
	}()
	RegisterProcessorFactory("TEST-registry-duplicate", factory)
}

func TestProcessorRegistry_NilFactoryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected registration of nil factory to panic")
		}
	}()
	RegisterProcessorFactory("test-registry-nil", nil)
}

func TestProcessorRegistry_ListingIsACopy(t *testing.T) {
	all := GetAllRegisteredProcessorFactories()
	all["test-registry-injected"] = func() (Processor, error) { return nil, nil }
	if GetProcessorFactory("test-registry-injected") != nil {
		t.Errorf("modifying the listing should not affect the registry")
	}
}
