// Package domain contains the core entities of the flashcards system:
// users, the self-referential topic tree, and cards. Entities validate
// themselves and know nothing about persistence or HTTP.
package domain
