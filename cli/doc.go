/*
Package cli defines the plugin extension point for the pcaped command. The
individual sub-commands of pcaped register themselves through it, and
downstream users can build extended translator CLIs that leverage the
existing base implementation.

Simply put, the plugin mechanism used in pcaped is compile-time only and
allows so-called plugins to register functions in what is termed “groups”.
The registered functions then can be iterated over when assembling the root
command. For more details about the plugin mechanism, please refer to
[go-plugger].

[go-plugger]: https://github.com/thediveo/go-plugger
*/
package cli
