// Package model defines the wizard descriptors the engine consumes: wizard
// definitions, steps, field descriptors with localized text, and the
// FormValues map. Types live in internal/model and are re-exported here.
// Field descriptors are produced by the backend; the engine only reads them,
// normalising through Builder (ordered steps, lower-cased types, labels
// derived from keys when missing) and checking the descriptor invariants
// with ValidateStep/ValidateWizard.
package model
