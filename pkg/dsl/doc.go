/*
Package dsl provides a fluent Go API for programmatically constructing flow snapshots.

It allows developers to define flows using a type-safe builder pattern instead
of hand-writing node and edge literals or external JSON files. This is
particularly useful for seeding stores, unit testing, and leveraging IDE
autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/flowsmith/flowsmith/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		b.Message("welcome", "Hi! Want to hear about our plans?").
			At(80, 40).
			To("plans")

		b.Message("plans", "Starter is free, Pro is $12/month.").
			Branch("interested", "pricing").
			Branch("not-now", "bye")

		b.Message("pricing", "Great, see flowsmith.dev/pricing for details.")
		b.Message("bye", "Thanks for stopping by!")

		// The resulting snapshot is verified and ready for the builder
		snap, err := b.Build()
		// ... pass snap to builder.Service.Validate or Save
		_, _ = snap, err
	}
*/
package dsl
