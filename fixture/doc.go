// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package fixture generates model-registry test fixtures.
//
// # Overview
//
// A fixture is a directory holding two files:
//   - model.pt: the parameter state of a small linear model (3 inputs, 1 output)
//   - metadata.json: a sidecar declaring id, version, model type and shapes
//
// Parameter values are random and carry no meaning; only the shapes are
// contractual.
//
// # Basic Usage
//
//	import "github.com/born-ml/modelfixture/fixture"
//
//	func main() {
//	    // Writes /tmp/fixtures/test_model/{model.pt,metadata.json}
//	    if err := fixture.Generate("/tmp/fixtures"); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fx, err := fixture.Load("/tmp/fixtures/test_model")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    y, _ := fx.Model.Forward([]float32{1, 2, 3})
//	}
package fixture
