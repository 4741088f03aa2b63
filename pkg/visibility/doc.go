// Package visibility decides which field descriptors of a step are shown for
// the current form values. The default rule honours the active flag and a
// single depends_on_field/depends_on_value pair; custom evaluators can be
// supplied through Filter.
package visibility
