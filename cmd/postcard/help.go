package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: postcard [flags] [markup file]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a markup file, component or Markdown file to email-safe markup.")
	fmt.Fprintln(w, "Output is printed to stdout. Logs and errors go to stderr, so output")
	fmt.Fprintln(w, "can be piped separately.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Source (first match wins: component, markdown, html, argument):")
	fmt.Fprintln(w, "      --html <path>         Static markup file")
	fmt.Fprintln(w, "      --react <ref>         Component: registered name or template file")
	fmt.Fprintln(w, "                            (alias: --component)")
	fmt.Fprintln(w, "      --markdown <path>     Markdown file (alias: --md)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "      --styles <path>       Stylesheet, SCSS/Sass supported (aliases: --scss, --css)")
	fmt.Fprintln(w, "                            Built-in partials: @import \"postcard/reset\";")
	fmt.Fprintln(w, "      --plaintext           Output plain text, all tags stripped (aliases: --text, --txt)")
	fmt.Fprintln(w, "      --prefix <s>          Text placed before the body, verbatim")
	fmt.Fprintln(w, "      --suffix <s>          Text placed after the body, verbatim")
	fmt.Fprintln(w, "      --endpoint <url>      Inline service URL")
	fmt.Fprintln(w, "  -t, --timeout <d>         Conversion timeout (default 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Write the result to a file")
	fmt.Fprintln(w, "      --preview <path.png>  Write a screenshot (requires Chrome)")
	fmt.Fprintln(w, "      --send-to <address>   Send a test email through Postmark")
	fmt.Fprintln(w, "      --subject <s>         Test email subject")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show stage timing")
	fmt.Fprintln(w, "      --version             Print version")
	fmt.Fprintln(w, "  -h, --help, -?            Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  POSTCARD_CONFIG, POSTCARD_STYLES, POSTCARD_TIMEOUT, POSTCARD_ENDPOINT,")
	fmt.Fprintln(w, "  POSTCARD_FROM, POSTCARD_POSTMARK_SERVER_TOKEN, POSTCARD_POSTMARK_ACCOUNT_TOKEN")
	fmt.Fprintln(w, "  A .env file in the working directory is read first.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example:")
	fmt.Fprintln(w, "  postcard --styles foo.scss index.html")
}
