package marshal

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// Parses a JSON file
func UnmarshalJsonFile(filename string, out interface{}) error {

	// Attempt to read the contents of the JSON file
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	// Attempt to parse the JSON data
	if err := json.Unmarshal(jsonData, out); err != nil {
		return err
	}

	return nil
}

// Serialises a value to an indented JSON file
func MarshalJsonFile(filename string, in interface{}) error {

	// Attempt to serialise the value
	jsonData, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}

	// Attempt to write the JSON data, terminated by a newline
	return os.WriteFile(filename, append(jsonData, '\n'), 0644)
}

// Parses a YAML file
func UnmarshalYamlFile(filename string, out interface{}) error {

	// Attempt to read the contents of the YAML file
	yamlData, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	// Attempt to parse the YAML data
	if err := yaml.Unmarshal(yamlData, out); err != nil {
		return err
	}

	return nil
}
