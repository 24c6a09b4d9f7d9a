// Package skema provides:
//
// - Schema nodes built from composable constructors (String, Object, Union, ...)
// - Validation with a status discipline (valid, dirty, aborted) that collects every issue
// - A stable error model via Issues (path, code, localized message)
// - Synchronous and asynchronous parsing; async refinements fan out with errgroup
// - JSON and YAML inputs with duplicate-key/depth/size enforcement
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - JSON Schema conversion lives under jsonschema/, Go source generation under codegen/,
//   codecs under codec/, cross-field rules under rules/, and the CLI under cmd/skema.
// - Nodes are immutable: every builder returns a new node.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	user := skema.Object(
//		skema.Prop("name", skema.String().Min(1)),
//		skema.Prop("email", skema.String().Email().Optional()),
//	)
//	v, err := user.Parse(ctx, input)
//	v, err = skema.ParseJSON(ctx, user, data)
//	doc := jsonschema.FromNode(user)
package skema
