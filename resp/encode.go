package resp

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeCommand renders a request as a multibulk array of bulk strings.
func EncodeCommand(command string, arguments ...string) []byte {
	var builder strings.Builder

	fmt.Fprintf(&builder, "*%d%s", len(arguments)+1, CRLF)
	fmt.Fprintf(&builder, "$%d%s%s%s", len(command), CRLF, command, CRLF)
	for _, arg := range arguments {
		fmt.Fprintf(&builder, "$%d%s%s%s", len(arg), CRLF, arg, CRLF)
	}

	return []byte(builder.String())
}

// Format renders a reply the way redis-cli prints it.
func Format(node Node) string {
	var b strings.Builder
	formatNode(&b, node, "")
	return b.String()
}

func formatNode(b *strings.Builder, node Node, indent string) {
	switch n := node.(type) {
	case SimpleString:
		b.WriteString(n.Value)
	case Error:
		b.WriteString("(error) " + n.Message)
	case Integer:
		b.WriteString("(integer) " + strconv.FormatInt(n.Value, 10))
	case BlobString:
		b.WriteString(strconv.Quote(n.Value))
	case Null:
		b.WriteString("(nil)")
	case Double:
		b.WriteString("(double) " + strconv.FormatFloat(n.Value, 'g', -1, 64))
	case Boolean:
		if n.Value {
			b.WriteString("(true)")
		} else {
			b.WriteString("(false)")
		}
	case BigNum:
		b.WriteString("(big number) " + n.Value)
	case Array:
		if len(n.Elements) == 0 {
			b.WriteString("(empty array)")
			break
		}
		width := len(strconv.Itoa(len(n.Elements)))
		for i, elem := range n.Elements {
			if i > 0 {
				b.WriteString("\n" + indent)
			}
			fmt.Fprintf(b, "%*d) ", width, i+1)
			formatNode(b, elem, indent+strings.Repeat(" ", width+2))
		}
	default:
		fmt.Fprintf(b, "(unknown %T)", node)
	}
}
