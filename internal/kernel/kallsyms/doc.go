// Package kallsyms reads the compressed kernel symbol table embedded in a
// raw (non-ELF) Linux kernel image.
//
// # Overview
//
// A kernel built with CONFIG_KALLSYMS carries, inside its read-only data,
// the tables produced by scripts/kallsyms, in this order:
//
//	kallsyms_offsets        int32[n] (or kallsyms_addresses u64[n] before 4.6)
//	kallsyms_relative_base  u64
//	kallsyms_num_syms       u64
//	kallsyms_names          n × (len byte, len token indices)
//	kallsyms_markers        u64 or u32 per 256 symbols
//	kallsyms_token_table    256 NUL-terminated strings
//	kallsyms_token_index    u16[256]
//
// Each table starts 8-byte aligned. Parse anchors on the token table, whose
// entries for '0' through '9' are the digits themselves, then walks
// backwards to the names, the symbol count and finally the addresses.
//
// # Limitations
//
// Only little-endian 64-bit images are supported, and the count field is
// expected in its 8-byte form (kernels before 6.x).
package kallsyms
