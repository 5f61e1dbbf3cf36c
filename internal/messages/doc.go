// Package messages holds every user-facing string in an embedded YAML
// catalogue (catalog.yaml), decoded with gopkg.in/yaml.v3.
package messages
