/*
Copyright © contributors to CloudNativePG, established as
CloudNativePG a Series of LF Projects, LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.

SPDX-License-Identifier: Apache-2.0
*/

// Package topology classifies the members of a database cluster into a
// writer, a dedicated reader and a pool of autoscaling readers.
//
// Classification is driven by an ordered Policy of rules evaluated for
// every member in the order reported by the control plane:
//   - the member flagged as writer by the cluster view
//   - the Role tag (dedicated-reader, autoscaling-reader)
//   - a naming fallback for members without a usable tag
//
// Members that are being deleted, or that have no instance descriptor,
// are never classified. Tag lookup failures degrade the member to the
// naming fallback and are reported as warnings.
package topology
