// Package config defines the format-agnostic definition model for option
// lists, the Loader interface implemented by format-specific packages, and
// the ListConfig handed to a list control together with the pure Merge
// function that layers a consumer's partial configuration over a generated
// one.
//
// Concrete loaders, such as the HCL one, live in separate packages.
package config
