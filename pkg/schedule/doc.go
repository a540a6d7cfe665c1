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

// Package schedule turns a human supplied time into a trigger expression
// in the cron dialect of the trigger service, arms the scaling trigger
// with it, and disables one-shot triggers once they have fired.
//
// Accepted inputs:
//   - "HH:MM" in a fixed local offset, daily
//   - "YYYY-MM-DD HH:MM" in the same offset, once
//   - "cron(...)", passed through unchanged
//
// The trigger dialect has six fields (minute hour day-of-month month
// day-of-week year). One-shot expressions pin day and month but not the
// year, so a one-shot trigger must be disabled after it fires.
package schedule
