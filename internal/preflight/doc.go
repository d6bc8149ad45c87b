// Package preflight provides readiness checks for the filesystem paths that
// sticqr depends on.
//
// These checks run in two contexts:
//   - The generation pipeline calls RunAll before rendering anything. If any
//     check fails, the run halts before a partial batch reaches disk.
//   - The CLI "config validate" command prints every result so operators can
//     fix paths before a print run.
//
// The icon check is skipped when no icon is configured.
package preflight
