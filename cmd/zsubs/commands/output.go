package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/zsubs-client/internal/constants"
	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString("output"))

	switch format {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", constants.ErrInvalidOutput, format)
	}
}

// renderValue writes v as JSON or YAML, or calls table for table output.
func renderValue(cmd *cobra.Command, v any, table func() error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")

		return encoder.Encode(v)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(cmd.OutOrStdout())
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(v)
	default:
		return table()
	}
}

func renderTable(cmd *cobra.Command, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}

	table.Header(cells...)

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderRecords prints a list of records, one row per record in table mode.
func renderRecords(cmd *cobra.Command, kind zsubs.Kind, records []zsubs.Record) error {
	attrs := make([]*zsubs.Map, len(records))
	for i, rec := range records {
		attrs[i] = rec.Attributes()
	}

	return renderMaps(cmd, kind, attrs)
}

func renderMaps(cmd *cobra.Command, kind zsubs.Kind, items []*zsubs.Map) error {
	return renderValue(cmd, items, func() error {
		if len(items) == 0 {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "No %s found\n", kind.Plural())

			return err
		}

		columns := listColumns(kind)

		header := make([]string, len(columns))
		for i, c := range columns {
			header[i] = columnTitle(c)
		}

		rows := make([][]string, len(items))
		for i, item := range items {
			row := make([]string, len(columns))
			for j, c := range columns {
				row[j] = formatCell(item.Value(c))
			}

			rows[i] = row
		}

		return renderTable(cmd, header, rows)
	})
}

// renderRecord prints one record as a property table.
func renderRecord(cmd *cobra.Command, rec zsubs.Record) error {
	return renderMap(cmd, rec.Attributes())
}

func renderMap(cmd *cobra.Command, m *zsubs.Map) error {
	return renderValue(cmd, m, func() error {
		rows := make([][]string, 0, m.Len())

		m.Range(func(key string, value any) bool {
			rows = append(rows, []string{key, formatCell(value)})

			return true
		})

		return renderTable(cmd, []string{"Property", "Value"}, rows)
	})
}

// listColumns returns the table columns shown for kind.
func listColumns(kind zsubs.Kind) []string {
	switch kind {
	case zsubs.KindCustomer:
		return []string{"customer_id", "display_name", "email", "status", "created_time"}
	case zsubs.KindContactPerson:
		return []string{"contactperson_id", "first_name", "last_name", "email"}
	case zsubs.KindCard:
		return []string{"card_id", "last_four_digits", "expiry_month", "expiry_year", "payment_gateway"}
	case zsubs.KindPlan:
		return []string{"plan_code", "name", "recurring_price", "interval", "interval_unit", "status"}
	case zsubs.KindAddon:
		return []string{"addon_code", "name", "pricing_scheme", "type", "status"}
	case zsubs.KindCoupon:
		return []string{"coupon_code", "name", "discount_by", "discount_value", "status"}
	case zsubs.KindProduct:
		return []string{"product_id", "name", "status"}
	case zsubs.KindPayment:
		return []string{"payment_id", "customer_id", "amount", "date", "payment_mode"}
	case zsubs.KindInvoice:
		return []string{"invoice_id", "number", "customer_name", "status", "total", "balance", "due_date"}
	case zsubs.KindSubscription:
		return []string{"subscription_id", "name", "customer_name", "status", "amount", "next_billing_at"}
	case zsubs.KindHostedPage:
		return []string{"hostedpage_id", "status", "url", "expiring_time"}
	default:
		return []string{string(kind) + "_id", "name", "status"}
	}
}

func columnTitle(column string) string {
	words := strings.Split(column, "_")
	for i, w := range words {
		switch w {
		case "id":
			words[i] = "ID"
		case "":
		default:
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}

	return strings.Join(words, " ")
}

// formatCell renders a value for a table cell. Containers are shown as
// compact JSON and long values are truncated.
func formatCell(v any) string {
	var s string

	switch t := v.(type) {
	case nil:
		return "-"
	case *zsubs.Map, zsubs.List:
		data, err := json.Marshal(t)
		if err != nil {
			return "?"
		}

		s = string(data)
	default:
		s = fmt.Sprint(t)
	}

	if s == "" {
		return "-"
	}

	if len(s) > constants.TableTruncateWidth {
		s = s[:constants.TableTruncateWidth-constants.TruncateSuffixLength] + "..."
	}

	return s
}

// readPayload reads a JSON or YAML document describing entity attributes.
// "-" reads from the command's input.
func readPayload(cmd *cobra.Command, path string) (*zsubs.Map, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		// #nosec G304 -- the path is supplied by the user on purpose
		data, err = os.ReadFile(filepath.Clean(path))
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		m, err := zsubs.ParseMap(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		return m, nil
	}

	m, err := zsubs.ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return m, nil
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
