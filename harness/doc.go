// Package harness drives the container lifecycle of a test run.
//
// A run is a tree of scopes. The root scope owns the container registry and the
// published property set; child scopes (suites, then tests) add their own
// declarations. Entering a scope provisions its containers, injects them into the
// tagged fields of a target struct and publishes its property templates:
//
//	func TestOrders(t *testing.T) {
//	    run := harness.Run(t, harness.Declarations{
//	        Containers: []container.Declaration{factory.Postgres(factory.PostgresSource{Name: "pg"})},
//	        Properties: []property.Template{
//	            {Container: "pg", Property: "DATABASE_URL", Value: "postgres://test:test@${host}:${port:5432}/test"},
//	        },
//	    })
//	    dsn, _ := run.Properties().Get("DATABASE_URL")
//	    ...
//	}
//
// Containers are started at most once per run and terminated once when the root
// scope closes. Nested scopes never tear anything down.
//
// Struct fields receive containers through the `container` tag. Fields tagged
// `container:"name,shared"` are filled when a run or suite scope is entered, all
// other tagged fields when a test scope is entered. Embedded structs are walked.
package harness
