// Package webui serves the wizard as server-rendered HTML forms.
//
// Every POST applies its fields to the in-process wizard store and either
// redirects back (post/redirect/get) or re-renders the page with inline
// errors. One server holds one wizard session.
package webui
