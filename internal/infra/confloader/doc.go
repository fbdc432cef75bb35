// Package confloader provides the configuration loading mechanism.
//
// It uses koanf to merge several sources into a typed struct:
//
//   - Configuration file (YAML)
//   - Environment variables (POOLD_ prefix, "__" separates sections)
//   - Explicit overrides (command-line flags)
//
// Priority (highest to lowest):
//
//  1. Overrides
//  2. Environment variables
//  3. Configuration file
//  4. Values already present in the target struct (defaults)
//
// Unmarshaling is strict: keys that do not map to a struct field are
// reported as errors so that a typo in the document is not silently
// ignored.
package confloader
