// Package validator holds the issue, result and reporter types shared by
// every ccdir check.
//
// Checks append [Issue] values to a [Result]; errors fail validation while
// warnings are reported but do not. A [Reporter] renders a Result as
// colorized text for terminals or as JSON for CI:
//
//	result := &validator.Result{}
//	result.AddError(subject, "slug", "slug is required", nil)
//	if err := validator.NewReporter(os.Stdout, validator.FormatText).Report(result); err != nil {
//		return err
//	}
//	return result.Err()
package validator
