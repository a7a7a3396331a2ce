/*
Package pcaped translates pcapng packet captures into an editable textual
rendition and back. A capture becomes a stream of YAML records, one per
pcapng block, with every header field of the dissected Ethernet, IPv4, UDP
and TCP layers spelled out as an ordered key/value mapping. Edit the text,
translate it back, and you have a valid capture again — the tool recomputes
nothing on its own, so what you write is what ends up on the wire format.

For the recomputing part there is the processing pipeline: it rewrites the
textual rendition in well-defined steps, such as re-deriving the layered
length fields after a payload edit, recomputing the Internet checksums,
renumbering TCP sequence and acknowledgement numbers per flow, zeroing MAC
addresses, and shifting the capture timeline to a different start date.

The three entry points [Pcap2Yaml], [Yaml2Pcap] and [ProcessYaml] operate on
plain readers and writers; [Worker] handles the file-or-stdio plumbing of
the pcaped CLI around them, including deriving a missing output path from
the input path.

Round-trip stability is the design center: decoding a capture and encoding
it right back reproduces the original blocks, including their field order,
hex number rendition, unknown blocks, and unknown link-layer payloads.
*/
package pcaped
