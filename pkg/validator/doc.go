/*
Package validator classifies candidate HSN codes against a reference table.

Validation is a pure function of the table and the input: it never mutates the
table, never returns an error and emits exactly one Result per input item, in
input order. Codes are checked for format first, then looked up exactly, then
resolved to the nearest known ancestor (next coarser level, then chapter).
*/
package validator
