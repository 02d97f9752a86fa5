/*
Package sessionstore provides the session-creation and validity-check
backends.

Redis keeps one expiring key per token (SET NX EX on create, TTL on
validate). Remote forwards both operations to another deployment's
/api/sessions endpoints and unwraps the {"success","response"} envelope.
*/
package sessionstore
