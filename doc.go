/*
Package formz provides a reactive form-validation engine.

A Form owns a set of fields. Each field has an input cell, a list of
validators, an enabled cell and optional triggers from other fields. The Form
keeps per-field and aggregate validity current as values change, and reports
changes and submit outcomes through callbacks.

# Basic Usage

Declare fields and build a Form:

	email := formz.FieldOf("email", "", rules.Required("email is required"))
	password := formz.FieldOf("password", "", rules.MinLength(8, "at least 8 characters"))
	confirm := formz.FieldOf("confirm", "",
	    rules.Equals(password.Input(), "passwords do not match"),
	).TriggeredBy("password")

	form, err := formz.NewBuilder[string]().
	    Strategy(formz.StrategyAfterSubmit).
	    OnFieldValidationChange(func(key string, msgs formz.Messages) {
	        render(key, msgs.Strings())
	    }).
	    OnValidSubmit(func(fields []formz.FieldValue[string]) {
	        send(fields)
	    }).
	    Add(email, password, confirm).
	    Build(ctx)

Write values through the fields and submit:

	email.Set("someone@example.com")
	form.Submit()

# Strategies

A ValidationStrategy decides when validation becomes visible:

	formz.StrategyAllTime      // validate on every change, including at build
	formz.StrategyAfterSubmit  // silent until the first submit (default)
	formz.StrategyOnSubmit     // validate only on submit and on triggers

Fields may override the form strategy with Field.WithStrategy.

# Adapters

StreamForm drives a Form from channels and Watchers and delivers callbacks as
a stream of Events. LiveForm drives a Form from Latest single-slot caches.
Both run the same Form underneath.

# Observability

The engine does not log. It emits capitan signals (FormBuilt,
FieldValidationChanged, FormValidityChanged, FormSubmitSucceeded,
FormSubmitFailed and others) and calls an optional MetricsProvider.
*/
package formz
