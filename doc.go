/* Package main: goforth, a threaded code FORTH

goforth is a small FORTH in the tradition of jonesforth: a handful of
primitive words, written in Go, and everything else built in FORTH itself
at start up.

Memory is one flat byte arena. The first cells hold the interpreter's
registers (STATE HERE LATEST S0 BASE), so FORTH code reads and writes them
with @ and ! just like any other variable. After them come the token buffer
used by WORD, the parameter stack, the return stack, and finally the
dictionary, which only ever grows.

Each dictionary entry is a header (a link to the previous entry, a flags and
length byte, and the name) followed by a code field. The code field holds
either the code number of a primitive, or DOCOL followed by the code field
addresses of the words that make up a colon definition. The inner
interpreter, NEXT, just fetches the code field address at ip and dispatches
it; see interp.go.

The outer interpreter, INTERPRET, reads one token at a time: words are run,
or compiled when STATE is set and they are not IMMEDIATE; anything else must
parse as a number in BASE. QUIT runs INTERPRET forever, and the prelude (see
prelude.go) uses IMMEDIATE words to build IF, BEGIN, comments, strings, and
number printing out of the primitives in primitives.go.

Host access goes through SYSCALL0 through SYSCALL3, backed by the
internal/sysgate package. A VM's memory may be saved and restored as an image
through internal/image; since code fields hold code numbers rather than host
addresses, images work across processes.
*/
package main
