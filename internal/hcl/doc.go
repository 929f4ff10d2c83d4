// Package hcl provides the HCL implementation of the profile loading
// interfaces defined in the `config` package. A profile file holds one block
// per configuration section and an optional top-level `defaults` list naming
// the profiles it builds on:
//
//	defaults = ["base"]
//
//	inference {
//	  num_designs   = 4
//	  output_prefix = "out/binder"
//	}
package hcl
