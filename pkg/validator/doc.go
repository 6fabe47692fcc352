// Package validator builds declarative validation from small Rule values.
//
// Each rule pairs a Check with the field-level error it reports. Apply runs
// all of them and aggregates failures into ValidationErrors, which satisfies
// error and survives wrapping:
//
//	err := validator.Apply(
//		validator.RequiredString("recipient", cmd.Recipient),
//		validator.ValidEmail("recipient", cmd.Recipient),
//		validator.MaxLenMap("parameters", cmd.Parameters, 32),
//	)
//	if ve := validator.ExtractValidationErrors(err); ve != nil {
//		for _, field := range ve.Fields() {
//			fmt.Println(field, ve.Get(field))
//		}
//	}
//
// Must adapts a precomputed condition into a rule for checks that do not fit
// the built-in helpers.
package validator
