package docs

import (
	"fmt"
	"strings"
	"time"

	md "github.com/nao1215/markdown"

	syncerrors "postman-sync/internal/errors"
	"postman-sync/internal/pathkey"
	"postman-sync/internal/types"
)

// Format selects the documentation output.
type Format string

const (
	FormatMarkdown    Format = "markdown"
	FormatJSON        Format = "json"
	FormatOpenAPI     Format = "openapi"
	FormatOpenAPIYAML Format = "openapi-yaml"
)

// Style selects the Markdown layout.
type Style string

const (
	StyleDetailed Style = "detailed"
	StyleCompact  Style = "compact"
)

var formats = []string{string(FormatMarkdown), string(FormatJSON), string(FormatOpenAPI), string(FormatOpenAPIYAML)}

var styles = []string{string(StyleDetailed), string(StyleCompact)}

// Options control Render.
type Options struct {
	Format      Format
	Style       Style
	Title       string
	GeneratedAt time.Time
}

// Render turns an endpoint set into documentation text. An empty format
// means markdown and an empty style means detailed; any other unknown value
// is an UnsupportedOption error.
func Render(set types.EndpointSet, opts Options) (string, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	switch opts.Format {
	case FormatMarkdown, "":
		switch opts.Style {
		case StyleDetailed, "":
			return detailedMarkdown(set, opts.GeneratedAt)
		case StyleCompact:
			return compactMarkdown(set, opts.GeneratedAt)
		default:
			return "", syncerrors.NewUnsupportedOptionError("template_style", string(opts.Style), styles...)
		}
	case FormatJSON:
		return IndentJSON(set), nil
	case FormatOpenAPI:
		return OpenAPIJSON(set, opts.Title)
	case FormatOpenAPIYAML:
		return OpenAPIYAML(set, opts.Title)
	default:
		return "", syncerrors.NewUnsupportedOptionError("format_type", string(opts.Format), formats...)
	}
}

const noEndpoints = "# API Documentation\n\nNo endpoints found in the provided data.\n"

func detailedMarkdown(set types.EndpointSet, generatedAt time.Time) (string, error) {
	if len(set.Endpoints) == 0 {
		return noEndpoints, nil
	}

	var buf strings.Builder
	doc := md.NewMarkdown(&buf)
	doc.H1("API Documentation").LF()
	doc.PlainText("This documentation was auto-generated from Rails controller analysis.").LF()
	doc.HorizontalRule().LF()

	for i, ep := range set.Endpoints {
		doc.H2(fmt.Sprintf("%d. %s %s", i+1, ep.Method, pathkey.Normalize(ep.Path))).LF()

		if ep.Description != "" {
			doc.PlainText(md.Bold("Description:") + " " + ep.Description).LF()
		}
		if ep.Controller != "" && ep.Action != "" {
			doc.PlainText(md.Bold("Controller:") + " " + md.Code(ep.Controller+"#"+ep.Action)).LF()
		}

		writeParameters(doc, ep)
		writeResponses(doc, ep)

		if i < len(set.Endpoints)-1 {
			doc.HorizontalRule().LF()
		}
	}

	doc.HorizontalRule().LF()
	doc.PlainText(md.Italic("Generated on " + generatedAt.Format(TimestampLayout)))

	if err := doc.Build(); err != nil {
		return "", fmt.Errorf("failed to build markdown: %w", err)
	}
	return buf.String(), nil
}

var parameterSections = []struct {
	location types.Location
	title    string
}{
	{types.LocationQuery, "Query Parameters"},
	{types.LocationPath, "Path Parameters"},
	{types.LocationHeader, "Header Parameters"},
}

func writeParameters(doc *md.Markdown, ep types.Endpoint) {
	doc.H3("Parameters").LF()
	if len(ep.Parameters) == 0 {
		doc.PlainText(md.Italic("No parameters required.")).LF()
		return
	}

	for _, section := range parameterSections {
		params := ep.ByLocation(section.location)
		if len(params) == 0 {
			continue
		}
		doc.H4(section.title).LF()
		doc.Table(parameterTable(params)).LF()
	}

	if body, contentType := BodyParameters(ep); len(body) > 0 {
		doc.H4("Request Body").LF()
		doc.PlainText(md.Bold("Content-Type:") + " " + md.Code(contentType)).LF()
		doc.Table(parameterTable(body)).LF()
	}
}

func parameterTable(params []types.Parameter) md.TableSet {
	rows := make([][]string, 0, len(params))
	for _, p := range params {
		required := "❌ No"
		if p.Required {
			required = "✅ Yes"
		}
		description := p.Description
		if description == "" {
			description = "No description provided"
		}
		rows = append(rows, []string{
			md.Code(p.Name),
			md.Code(string(p.TypeOrDefault())),
			required,
			description,
		})
	}
	return md.TableSet{
		Header: []string{"Name", "Type", "Required", "Description"},
		Rows:   rows,
	}
}

func writeResponses(doc *md.Markdown, ep types.Endpoint) {
	doc.H3("Responses").LF()
	if len(ep.Responses) == 0 {
		doc.PlainText(md.Italic("No response examples available.")).LF()
		return
	}

	for _, r := range ep.Responses {
		status := r.StatusOrDefault()
		doc.H4(fmt.Sprintf("%s %d - %s", statusMarker(status), status, r.Description)).LF()
		if r.HasExample() {
			doc.PlainText(md.Bold("Example Response:")).LF()
			doc.CodeBlocks(md.SyntaxHighlight("json"), IndentJSON(r.Example)).LF()
		}
	}
}

func statusMarker(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "✅"
	case status >= 400 && status < 500:
		return "❌"
	case status >= 500 && status < 600:
		return "💥"
	default:
		return "ℹ️"
	}
}

func compactMarkdown(set types.EndpointSet, generatedAt time.Time) (string, error) {
	if len(set.Endpoints) == 0 {
		return noEndpoints, nil
	}

	groups := make(map[types.Method][]types.Endpoint)
	for _, ep := range set.Endpoints {
		groups[ep.Method] = append(groups[ep.Method], ep)
	}

	var buf strings.Builder
	doc := md.NewMarkdown(&buf)
	doc.H1("API Endpoints").LF()
	doc.PlainText("Quick reference for all available API endpoints.").LF()

	for _, method := range types.Methods {
		endpoints, ok := groups[method]
		if !ok {
			continue
		}
		doc.H2(fmt.Sprintf("%s Endpoints", method)).LF()

		items := make([]string, 0, len(endpoints))
		for _, ep := range endpoints {
			line := md.Bold(pathkey.Normalize(ep.Path))
			if ep.Description != "" {
				line += " - " + ep.Description
			}
			if ep.Controller != "" && ep.Action != "" {
				line += " (" + md.Code(ep.Controller+"#"+ep.Action) + ")"
			}
			items = append(items, line)
		}
		doc.BulletList(items...).LF()
	}

	doc.PlainText(md.Italic("Generated on " + generatedAt.Format(TimestampLayout)))

	if err := doc.Build(); err != nil {
		return "", fmt.Errorf("failed to build markdown: %w", err)
	}
	return buf.String(), nil
}
