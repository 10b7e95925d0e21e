package serializer

import "github.com/mdouchement/todo/internal/sferror"

// Form serializes the submitted values of a form and its errors.
func Form(values map[string]string, err *sferror.ValidationError) map[string]any {
	errs := map[string]string{}
	if err != nil {
		errs = err.Fields
	}

	if values == nil {
		values = map[string]string{}
	}

	return map[string]any{
		"Values": values,
		"Errors": errs,
	}
}
