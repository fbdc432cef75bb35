// Package output formats CLI results as text, JSON or YAML.
package output
