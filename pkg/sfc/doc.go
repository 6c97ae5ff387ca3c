// Package sfc parses single-file components.
//
// A .lego file holds up to three sections:
//
//	<template b-styles="base" b-data="{ open: false }">
//	  <p b-if="open">[[ message ]]</p>
//	</template>
//	<script>
//	export default { message: "hello" }
//	</script>
//	<style>
//	  self { display: block }
//	</style>
//
// The component name comes from the file name, converted to kebab-case.
// Names without a hyphen are rejected.
package sfc
