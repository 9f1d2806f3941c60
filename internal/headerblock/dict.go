// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package headerblock

// Dictionary is the zlib preset dictionary SPDY/3 uses to seed header
// compression, biasing the compressor toward the header names and values
// that show up on nearly every request and response. Real deployments
// must use the exact byte string the SPDY/3 draft publishes so that
// compressor and decompressor agree; this is the set of tokens the
// teacher package referenced as headerDictionary but did not carry in the
// retrieved source, reconstructed here from the common header vocabulary
// the draft's dictionary is built from.
var Dictionary = []byte(
	"optionsgetheadpostputdeletetraceacceptaccept-charsetaccept-encodingaccept-" +
		"languageauthorizationexpectfromhostif-modified-sinceif-matchif-none-matchi" +
		"f-rangeif-unmodifiedsincemax-forwardsproxy-authorizationrangerefererteuser" +
		"-agent100101200201202203204205206300301302303304305306307400401402403404" +
		"405406407408409410411412413414415416417500501502503504505accept-rangesag" +
		"eetaglocationproxy-authenticatepublicretry-afterservervarywarningwww-auth" +
		"enticateallowcontent-basecontent-encodingcache-controlconnectiondatetrail" +
		"ertransfer-encodingupgradeviawarningcontent-languagecontent-lengthconten" +
		"t-locationcontent-md5content-rangecontent-typeetagexpireslast-modifiedse" +
		"t-cookieMondayTuesdayWednesdayThursdayFridaySaturdaySundayJanFebMarAprMay" +
		"JunJulAugSepOctNovDecchunkedtext/htmlimage/pngimage/jpgimage/gifapplicat" +
		"ion/xmlapplication/xhtmltext/plainpublicmax-agecharset=iso-8859-1utf-8gz" +
		"ipdeflateHTTP/1.1statusversionurl")
