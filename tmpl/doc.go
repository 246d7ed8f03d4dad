// Package tmpl renders format strings against a data context.
//
// A format string mixes literal text with placeholders:
//
//	{point.value}                 property path
//	{point.value:.2f}             number with two decimals
//	{point.long:,.2f}             grouped thousands
//	{point.date:%Y-%m-%d}         date tokens, UTC
//	{add @index 1}                helper call
//	{(divide 22 7):.2f}           parenthesized subexpression
//	{#if point.isNull}-{else}{point.y}{/if}
//	{#foreach items}{@index}. {this}{/foreach}
//
// Paths descend only through maps with string keys, slices and strings
// ("length"). Functions, pointers, structs and [Host] values are never read:
// a placeholder reaching one renders empty, or fails the render with
// [ErrUnsafeAccess] under [WithStrict]. Missing properties render empty.
//
// Numeric specs use the separators of a [Locale], read from [CurrentLocale]
// at render time unless given with [WithLocale].
//
// Helpers live in a [Registry]. The built-ins are add, subtract, multiply
// and divide; the comparisons eq, ne, gt, ge, lt and le; and the block
// helpers if, unless and foreach (alias each). Any helper may be invoked as
// a block; see [Helper] for how its result is interpreted. A bare word that
// no scope binds, such as {now}, calls the helper of that name with no
// arguments.
//
// [Render] parses through a process-wide cache keyed by the xxh3 hash of the
// format string, so repeated renders of one string parse it once. The cache
// is unbounded: hosts that build format strings dynamically should call
// [Parse] and [Template.Execute] directly, or [ClearCache] periodically.
package tmpl
