package discover

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// FormatOutput formats a discovery response according to output format.
func FormatOutput(response *Response, format string) error {
	switch format {
	case "json":
		return formatJSON(response)
	case "yaml":
		return formatYAML(response)
	case "table":
		return formatTable(response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func formatTable(response *Response) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "FILE\tVARIANT\tFORMAT\tMODEL\tFAMILY\tLOG SIZE\tPOINTERS\n")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
		response.FilePath, response.Variant, response.Format, response.Model,
		response.Family, response.LogSize, response.PointerCount)
	fmt.Printf("\ndiscovered in %v\n", response.SearchTime)

	return nil
}

func formatJSON(response *Response) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

func formatYAML(response *Response) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(response)
}
