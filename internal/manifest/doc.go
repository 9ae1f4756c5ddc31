// internal/manifest/doc.go

/*
Package manifest parses HCL operator-type manifests into format-agnostic
definitions.

A manifest declares one operator type: its typed input fields (kind,
optional type expression, default, optional/accessor flags, nested children
for compound fields, element template for array/list fields) and its output
fields. The parsed Definition carries a ready schema.Schema per field, so
the operator layer never touches HCL.

	operator "geo_distance" {
	  description = "Great-circle distance between two coordinates."

	  input "from" { kind = "coordinate" }
	  input "to"   { kind = "coordinate" }
	  input "unit" {
	    kind    = "menu"
	    options = ["km", "mi"]
	    default = "km"
	  }

	  output "distance" { kind = "number" }
	}
*/
package manifest
